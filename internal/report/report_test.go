package report

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/okian/rewardscan/internal/adapters/repository"
	"github.com/okian/rewardscan/internal/domain/model"
	"github.com/okian/rewardscan/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func seed(ctx context.Context) *repository.MemoryStore {
	store := repository.NewMemoryStore(ctx)
	qm1, _ := store.Ensure(ctx, "Qm1")
	qm1.SetBucket(model.BucketInterim, 10)

	qm2, _ := store.Ensure(ctx, "Qm2")
	qm2.SetBucket(model.BucketExisting, 1000)
	qm2.SetBucket(model.BucketPostUpdate, 234.5)
	qm2.SetPresence("feb", true)
	qm2.SetPresence("jan", false)
	qm2.Criteria = "duplicate hardware"
	return store
}

func TestPeers(t *testing.T) {
	ctx := context.Background()

	Convey("Given reconciled peers", t, func() {
		store := seed(ctx)
		var buf bytes.Buffer
		r, err := New(&buf)
		So(err, ShouldBeNil)

		Convey("When the requested peer is unknown", func() {
			totals, err := r.Peers(ctx, []string{"QmX"}, store)

			Convey("Then a not found line is printed and totals stay zero", func() {
				So(err, ShouldBeNil)
				So(buf.String(), ShouldContainSubstring, "No peer found with ID: QmX\n")
				So(totals.Missing, ShouldResemble, []string{"QmX"})
				So(totals.Grand(), ShouldEqual, 0)
			})
		})

		Convey("When a peer has a single interim reward", func() {
			totals, err := r.Peers(ctx, []string{"Qm1"}, store)
			out := buf.String()

			Convey("Then its block shows every bucket and the total", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "Peer ID: Qm1\n")
				So(out, ShouldContainSubstring, "Rewards before 2024 (Existing)                   : 0.00\n")
				So(out, ShouldContainSubstring, "Rewards between January and May 12               : 10.00\n")
				So(out, ShouldContainSubstring, "Total rewards                                    : 10.00\n")
				So(out, ShouldNotContainSubstring, "Criteria:")
				So(totals.Legacy, ShouldEqual, 10)
				So(totals.Current, ShouldEqual, 0)
			})
		})

		Convey("When several peers are requested", func() {
			totals, err := r.Peers(ctx, []string{"Qm2", "QmX", "Qm1"}, store)
			out := buf.String()

			Convey("Then blocks follow the request order", func() {
				So(err, ShouldBeNil)
				So(strings.Index(out, "Peer ID: Qm2"), ShouldBeLessThan, strings.Index(out, "No peer found with ID: QmX"))
				So(strings.Index(out, "No peer found with ID: QmX"), ShouldBeLessThan, strings.Index(out, "Peer ID: Qm1"))
			})

			Convey("And presence and criteria are shown", func() {
				So(strings.Index(out, "Presence jan"), ShouldBeLessThan, strings.Index(out, "Presence feb"))
				So(out, ShouldContainSubstring, "Criteria: duplicate hardware\n")
				So(out, ShouldContainSubstring, "Total rewards                                    : 1,234.50\n")
			})

			Convey("And running totals add up", func() {
				So(totals.Legacy, ShouldEqual, 1010)
				So(totals.Current, ShouldEqual, 234.5)
				So(out, ShouldContainSubstring, "==>\tTotal                              : 1,244.50 QUIL\n")
			})
		})
	})
}

func TestAggregate(t *testing.T) {
	ctx := context.Background()

	Convey("Given a network of peers", t, func() {
		store := seed(ctx)
		net := Sum(store.All(ctx))
		summary := types.Summary{
			Total: 2,
			Members: map[types.Category][]string{
				types.Banned:   {"Qm2"},
				types.Inactive: {"Qm1"},
			},
		}

		Convey("Then the sums split at the cutoff", func() {
			So(net.Peers, ShouldEqual, 2)
			So(net.Total, ShouldEqual, 1244.5)
			So(net.Legacy(), ShouldEqual, 1010)
			So(net.Current(), ShouldEqual, 234.5)
		})

		Convey("When the section is written", func() {
			var buf bytes.Buffer
			r, _ := New(&buf, WithUnit("Q"))
			updated := time.Date(2024, 5, 23, 10, 30, 0, 0, time.FixedZone("PDT", -7*3600))
			err := r.Aggregate("https://quilibrium.com", updated, net, summary)
			out := buf.String()

			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "Last data update from https://quilibrium.com: 2024-05-23 10:30AM PDT")
			So(out, ShouldContainSubstring, "Banned Peers            : 1\n")
			So(out, ShouldContainSubstring, "Inactive Peers          : 1\n")
			So(out, ShouldContainSubstring, "Active Peers            : 0\n")
			So(out, ShouldContainSubstring, "Distributed Rewards before 12 May  : 1,010.00 Q\n")
			So(out, ShouldContainSubstring, "Distributed Rewards after 12 May   : 234.50 Q\n")
		})

		Convey("When the last update is unknown", func() {
			var buf bytes.Buffer
			r, _ := New(&buf)
			So(r.Aggregate("http://x", time.Time{}, net, summary), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "http://x: unknown")
		})
	})
}

func TestReporterErrors(t *testing.T) {
	Convey("Given a broken output", t, func() {
		_, err := New(nil)
		So(errors.Is(err, ErrNilWriter), ShouldBeTrue)

		r, err := New(failingWriter{})
		So(err, ShouldBeNil)
		err = r.Aggregate("http://x", time.Time{}, Network{}, types.Summary{})
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "disk full")
	})
}
