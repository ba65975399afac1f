package reconcile_test

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/rewardscan/internal/adapters/repository"
	"github.com/okian/rewardscan/internal/domain/model"
	"github.com/okian/rewardscan/internal/domain/reconcile"
	. "github.com/smartystreets/goconvey/convey"
)

func rewardSources(entries map[model.SourceKind][]model.Entry) []reconcile.Source {
	var out []reconcile.Source
	for _, k := range model.RewardSources() {
		out = append(out, reconcile.Source{Kind: k, Entries: entries[k]})
	}
	return out
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()

	Convey("Given a reconciler", t, func() {
		r := reconcile.New()

		Convey("When a peer appears in exactly one of four reward sources", func() {
			sources := rewardSources(map[model.SourceKind][]model.Entry{
				model.SourcePreUpdate: {{"peerId": "Qm1", "reward": "10"}},
			})
			sources = append(sources, reconcile.Source{Kind: model.SourceDisqualified})

			store, err := r.Reconcile(ctx, sources)
			So(err, ShouldBeNil)
			rec, err := store.Get(ctx, "Qm1")
			So(err, ShouldBeNil)

			Convey("Then only that bucket is set and the total matches", func() {
				nonZero := 0
				for _, b := range model.Buckets() {
					if rec.Bucket(b) != 0 {
						nonZero++
					}
				}
				So(nonZero, ShouldEqual, 1)
				So(rec.Bucket(model.BucketPreUpdate), ShouldEqual, 10.0)
				So(rec.TotalReward(), ShouldEqual, 10.0)
				So(rec.Criteria, ShouldEqual, model.NotDisqualified)
			})
		})

		Convey("When a peer appears in several sources", func() {
			store, err := r.Reconcile(ctx, rewardSources(map[model.SourceKind][]model.Entry{
				model.SourceExisting:   {{"peerId": "Qm1", "reward": json.Number("100.5")}},
				model.SourceInterim:    {{"peerId": "Qm1", "reward": int64(20), "janPresence": true, "FebPresence": false}},
				model.SourcePostUpdate: {{"peerId": "Qm1", "reward": 4.5}, {"peerId": "Qm2"}},
			}))
			So(err, ShouldBeNil)

			Convey("Then every bucket and presence flag lands on one record", func() {
				rec, _ := store.Get(ctx, "Qm1")
				So(rec.Bucket(model.BucketExisting), ShouldEqual, 100.5)
				So(rec.Bucket(model.BucketInterim), ShouldEqual, 20.0)
				So(rec.Bucket(model.BucketPostUpdate), ShouldEqual, 4.5)
				So(rec.TotalReward(), ShouldEqual, 125.0)
				So(rec.Present("jan"), ShouldBeTrue)
				So(rec.Present("feb"), ShouldBeFalse)
				So(rec.Months(), ShouldResemble, []string{"jan", "feb"})
			})

			Convey("And an entry without a reward counts as zero", func() {
				rec, _ := store.Get(ctx, "Qm2")
				So(rec.TotalReward(), ShouldEqual, 0.0)
			})

			Convey("And peers keep first-seen order", func() {
				all := store.All(ctx)
				So(len(all), ShouldEqual, 2)
				So(all[0].PeerID(), ShouldEqual, "Qm1")
				So(all[1].PeerID(), ShouldEqual, "Qm2")
			})
		})

		Convey("When the disqualification source comes first", func() {
			sources := []reconcile.Source{
				{Kind: model.SourceDisqualified, Entries: []model.Entry{
					{"peerId": "Qm1", "criteria": "duplicate"},
					{"peerId": "Qm9", "criteria": "sybil"},
					{"peerId": "Qm7"},
				}},
				{Kind: model.SourceInterim, Entries: []model.Entry{{"peerId": "Qm1", "reward": "5"}}},
			}
			store, err := r.Reconcile(ctx, sources)
			So(err, ShouldBeNil)

			Convey("Then criteria still apply after the rewards", func() {
				rec, _ := store.Get(ctx, "Qm1")
				So(rec.Criteria, ShouldEqual, "duplicate")
				So(rec.TotalReward(), ShouldEqual, 5.0)
				So(store.All(ctx)[0].PeerID(), ShouldEqual, "Qm1")
			})

			Convey("And disqualified-only peers get zero-valued records", func() {
				rec, err := store.Get(ctx, "Qm9")
				So(err, ShouldBeNil)
				So(rec.Criteria, ShouldEqual, "sybil")
				So(rec.TotalReward(), ShouldEqual, 0.0)
			})

			Convey("And a listing without a reason keeps the sentinel", func() {
				rec, _ := store.Get(ctx, "Qm7")
				So(rec.Disqualified(), ShouldBeFalse)
			})
		})

		Convey("When a reward is present but not numeric", func() {
			_, err := r.Reconcile(ctx, []reconcile.Source{
				{Kind: model.SourceExisting, Entries: []model.Entry{{"peerId": "Qm1", "reward": "ten"}}},
			})

			Convey("Then a data format error names the peer and source", func() {
				So(errors.Is(err, reconcile.ErrDataFormat), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "Qm1")
				So(err.Error(), ShouldContainSubstring, "existing")
			})
		})

		Convey("When an entry has no peer id", func() {
			_, err := r.Reconcile(ctx, []reconcile.Source{
				{Kind: model.SourceInterim, Entries: []model.Entry{{"reward": "1"}}},
			})
			So(errors.Is(err, reconcile.ErrDataFormat), ShouldBeTrue)
		})

		Convey("When a presence flag is not boolean", func() {
			_, err := r.Reconcile(ctx, []reconcile.Source{
				{Kind: model.SourceInterim, Entries: []model.Entry{{"peerId": "Qm1", "marPresence": "maybe"}}},
			})
			So(errors.Is(err, reconcile.ErrDataFormat), ShouldBeTrue)
		})

		Convey("When a source kind is unknown", func() {
			_, err := r.Reconcile(ctx, []reconcile.Source{{Kind: model.SourceKind(99)}})
			So(errors.Is(err, reconcile.ErrUnknownSource), ShouldBeTrue)
		})

		Convey("When a store is supplied", func() {
			store := repository.NewMemoryStore(ctx)
			got, err := reconcile.New(reconcile.WithStore(store)).Reconcile(ctx, rewardSources(map[model.SourceKind][]model.Entry{
				model.SourceInterim: {{"peerId": "Qm1", "reward": "1"}},
			}))
			So(err, ShouldBeNil)
			So(got, ShouldEqual, store)
			So(store.Count(ctx), ShouldEqual, 1)
		})

		Convey("When custom field names are configured", func() {
			r := reconcile.New(reconcile.WithRewardField("amount"), reconcile.WithCriteriaField("why"))
			store, err := r.Reconcile(ctx, []reconcile.Source{
				{Kind: model.SourceInterim, Entries: []model.Entry{{"peerId": "Qm1", "amount": "3"}}},
				{Kind: model.SourceDisqualified, Entries: []model.Entry{{"peerId": "Qm1", "why": "late"}}},
			})
			So(err, ShouldBeNil)
			rec, _ := store.Get(ctx, "Qm1")
			So(rec.TotalReward(), ShouldEqual, 3.0)
			So(rec.Criteria, ShouldEqual, "late")
		})
	})
}

func TestReconcileTotals(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))
	ids := []string{"a", "b", "c", "d", "e"}

	Convey("Given random sources with gaps", t, func() {
		entries := map[model.SourceKind][]model.Entry{}
		for _, k := range model.RewardSources() {
			for _, id := range ids {
				switch rng.Intn(3) {
				case 0: // absent from this source
				case 1:
					entries[k] = append(entries[k], model.Entry{"peerId": id})
				default:
					entries[k] = append(entries[k], model.Entry{"peerId": id, "reward": float64(rng.Intn(1000)) / 4})
				}
			}
		}

		store, err := reconcile.New().Reconcile(ctx, rewardSources(entries))
		So(err, ShouldBeNil)

		Convey("Then every total equals its bucket sum", func() {
			for _, rec := range store.All(ctx) {
				var sum float64
				for _, b := range model.Buckets() {
					sum += rec.Bucket(b)
				}
				So(rec.TotalReward(), ShouldEqual, sum)
			}
		})
	})
}

func TestAmount(t *testing.T) {
	Convey("Given reward values", t, func() {
		cases := []struct {
			in   any
			want float64
		}{
			{nil, 0},
			{"", 0},
			{"  ", 0},
			{"12.5", 12.5},
			{" 7 ", 7},
			{int64(3), 3},
			{3, 3},
			{2.25, 2.25},
			{json.Number("1e2"), 100},
		}
		for _, c := range cases {
			got, err := reconcile.Amount(model.Entry{"reward": c.in}, "reward")
			So(err, ShouldBeNil)
			So(got, ShouldEqual, c.want)
		}

		Convey("Then a missing field is zero", func() {
			got, err := reconcile.Amount(model.Entry{}, "reward")
			So(err, ShouldBeNil)
			So(got, ShouldEqual, 0.0)
		})

		Convey("Then invalid values are data format errors", func() {
			for _, in := range []any{"abc", "NaN", "-1", -2.0, true, []any{1}, json.Number("x")} {
				_, err := reconcile.Amount(model.Entry{"reward": in}, "reward")
				So(errors.Is(err, reconcile.ErrDataFormat), ShouldBeTrue)
			}
		})
	})
}

func TestFlagAndPresenceMonth(t *testing.T) {
	Convey("Given presence values", t, func() {
		for in, want := range map[any]bool{true: true, false: false, int64(1): true, int64(0): false, "true": true, "0": false, 1.0: true} {
			got, ok, err := reconcile.Flag(in)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, want)
		}

		_, ok, err := reconcile.Flag(nil)
		So(err, ShouldBeNil)
		So(ok, ShouldBeFalse)

		_, _, err = reconcile.Flag("sometimes")
		So(errors.Is(err, reconcile.ErrDataFormat), ShouldBeTrue)
	})

	Convey("Given field names", t, func() {
		m, ok := reconcile.PresenceMonth("janPresence")
		So(ok, ShouldBeTrue)
		So(m, ShouldEqual, "jan")

		m, ok = reconcile.PresenceMonth("SeptemberPresence")
		So(ok, ShouldBeTrue)
		So(m, ShouldEqual, "sep")

		_, ok = reconcile.PresenceMonth("Presence")
		So(ok, ShouldBeFalse)

		_, ok = reconcile.PresenceMonth("reward")
		So(ok, ShouldBeFalse)
	})
}

func TestSourcesFromRecords(t *testing.T) {
	Convey("Given merged script records", t, func() {
		records := []model.Entry{
			{"peerId": "Qm1", "existingReward": int64(5), "reward": 2.5, "janPresence": true},
			{"peerId": "Qm2", "postUpdateReward": int64(1), "criteria": "sybil"},
			{"peerId": "Qm3", "febPresence": false},
			{"reward": int64(9)},
		}

		sources := reconcile.SourcesFromRecords(records, reconcile.DefaultLayout())

		Convey("Then each reward field becomes an entry of its source", func() {
			So(len(sources), ShouldEqual, 5)
			So(sources[0].Kind, ShouldEqual, model.SourceExisting)
			want := []model.Entry{
				{"peerId": "Qm1", "reward": int64(5), "janPresence": true},
				{"peerId": "Qm3", "febPresence": false},
			}
			So(cmp.Diff(want, sources[0].Entries), ShouldBeEmpty)
			So(cmp.Diff([]model.Entry{{"peerId": "Qm1", "reward": 2.5, "janPresence": true}}, sources[1].Entries), ShouldBeEmpty)
			So(sources[2].Entries, ShouldBeEmpty)
			So(cmp.Diff([]model.Entry{{"peerId": "Qm2", "reward": int64(1)}}, sources[3].Entries), ShouldBeEmpty)
		})

		Convey("Then criteria form the disqualification source", func() {
			So(sources[4].Kind, ShouldEqual, model.SourceDisqualified)
			So(cmp.Diff([]model.Entry{{"peerId": "Qm2", "criteria": "sybil"}}, sources[4].Entries), ShouldBeEmpty)
		})

		Convey("And reconciling them yields consistent records", func() {
			store, err := reconcile.New().Reconcile(context.Background(), sources)
			So(err, ShouldBeNil)
			So(store.Count(context.Background()), ShouldEqual, 3)

			rec, _ := store.Get(context.Background(), "Qm1")
			So(rec.TotalReward(), ShouldEqual, 7.5)
			So(rec.Present("jan"), ShouldBeTrue)

			rec, _ = store.Get(context.Background(), "Qm2")
			So(rec.Disqualified(), ShouldBeTrue)
		})
	})

	Convey("Given layout overrides", t, func() {
		l, err := reconcile.NewLayout(map[string]string{"interim": "rewards2024"}, "dq")
		So(err, ShouldBeNil)
		So(l.Fields[model.SourceInterim], ShouldEqual, "rewards2024")
		So(l.Fields[model.SourceExisting], ShouldEqual, "existingReward")
		So(l.CriteriaField, ShouldEqual, "dq")

		_, err = reconcile.NewLayout(map[string]string{"disqualified": "x"}, "")
		So(errors.Is(err, reconcile.ErrInvalidLayout), ShouldBeTrue)

		_, err = reconcile.NewLayout(map[string]string{"interim": ""}, "")
		So(errors.Is(err, reconcile.ErrInvalidLayout), ShouldBeTrue)
	})
}
