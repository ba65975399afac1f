// Package report renders the network summary and per-peer reward reports.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/okian/rewardscan/internal/adapters/repository"
	"github.com/okian/rewardscan/internal/domain/model"
	"github.com/okian/rewardscan/internal/domain/types"
)

const (
	defaultUnit       = "QUIL"
	defaultTimeLayout = "2006-01-02 03:04PM MST"
	amountFormat      = "#,###.##"
	ruleWidth         = 80
	labelWidth        = 49
)

// PeerSource looks up reconciled peers by id.
type PeerSource interface {
	Get(ctx context.Context, peerID string) (*model.PeerRecord, error)
}

// Network holds reward sums over every known peer.
type Network struct {
	Peers   int
	Buckets map[model.Bucket]float64
	Total   float64
}

// Legacy is the reward distributed before the May 12 cutoff.
func (n Network) Legacy() float64 {
	return n.Buckets[model.BucketExisting] + n.Buckets[model.BucketInterim]
}

// Current is the reward distributed after the May 12 cutoff.
func (n Network) Current() float64 {
	return n.Buckets[model.BucketPreUpdate] + n.Buckets[model.BucketPostUpdate]
}

// Sum adds up the buckets of every record.
func Sum(records []*model.PeerRecord) Network {
	n := Network{Peers: len(records), Buckets: make(map[model.Bucket]float64, len(model.Buckets()))}
	for _, rec := range records {
		for _, b := range model.Buckets() {
			n.Buckets[b] += rec.Bucket(b)
		}
		n.Total += rec.TotalReward()
	}
	return n
}

// Totals are the running sums over the requested peers.
type Totals struct {
	Legacy  float64
	Current float64
	Missing []string
}

// Grand returns legacy plus current.
func (t Totals) Grand() float64 { return t.Legacy + t.Current }

// Reporter writes the report to an output stream.
type Reporter struct {
	w          io.Writer
	unit       string
	timeLayout string
	err        error
}

// New creates a Reporter writing to w.
func New(w io.Writer, opts ...Option) (*Reporter, error) {
	if w == nil {
		return nil, ErrNilWriter
	}
	r := &Reporter{w: w, unit: defaultUnit, timeLayout: defaultTimeLayout}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Aggregate writes the network-wide section.
func (r *Reporter) Aggregate(baseURL string, lastUpdated time.Time, net Network, s types.Summary) error {
	updated := "unknown"
	if !lastUpdated.IsZero() {
		updated = lastUpdated.Format(r.timeLayout)
	}

	r.rule()
	r.printf("Info: Last data update from %s: %s\n", baseURL, updated)
	r.printf("Info: This is the total rewards distribution for all nodes...\n")
	r.printf("\tTotal created Peers: %s Nodes\n", count(net.Peers))
	r.printf("\t\tActive Peers            : %s\n", count(s.Count(types.Active)))
	r.printf("\t\tInactive Peers          : %s\n", count(s.Count(types.Inactive)))
	r.printf("\t\tRecently Inactive Peers : %s\n", count(s.Count(types.RecentlyInactive)))
	r.printf("\t\tNew Peers               : %s\n", count(len(s.New)))
	r.printf("\t\tBanned Peers            : %s\n", count(s.Count(types.Banned)))
	r.printf("\n")
	r.printf("\tDistributed Rewards for all nodes  : %s\n", r.amount(net.Total))
	r.printf("\tDistributed Rewards before 12 May  : %s\n", r.amount(net.Legacy()))
	r.printf("\tDistributed Rewards after 12 May   : %s\n", r.amount(net.Current()))
	r.printf("\t----\n")
	r.printf("\tTotal rewards for %s Nodes: %s\n", count(net.Peers), r.amount(net.Total))
	r.rule()
	return r.flush()
}

// Peers writes one block per id, in order, then the running totals.
// Unknown ids print a not-found line and add nothing.
func (r *Reporter) Peers(ctx context.Context, ids []string, src PeerSource) (Totals, error) {
	var t Totals
	for _, id := range ids {
		rec, err := src.Get(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			r.printf("No peer found with ID: %s\n", id)
			t.Missing = append(t.Missing, id)
			continue
		}
		if err != nil {
			return t, fmt.Errorf("look up %s: %w", id, err)
		}
		r.peer(rec)
		t.Legacy += rec.LegacyReward()
		t.Current += rec.CurrentReward()
	}

	r.printf("==>\tTotal Existing Balance (< 12 May)  : %s\n", r.amount(t.Legacy))
	r.printf("==>\tTotal Reward           (>= 12 May) : %s\n", r.amount(t.Current))
	r.printf("==>\tTotal                              : %s\n", r.amount(t.Grand()))
	r.printf("---\n")
	return t, r.flush()
}

func (r *Reporter) peer(rec *model.PeerRecord) {
	r.printf("Peer ID: %s\n", rec.PeerID())
	for _, b := range model.Buckets() {
		r.field(b.Label(), humanize.FormatFloat(amountFormat, rec.Bucket(b)))
	}
	r.field("Total rewards", humanize.FormatFloat(amountFormat, rec.TotalReward()))
	for _, m := range rec.Months() {
		r.field("Presence "+m, presence(rec.Present(m)))
	}
	if rec.Disqualified() {
		r.printf("Criteria: %s\n", rec.Criteria)
	}
	r.printf("---\n")
}

func (r *Reporter) field(label, value string) {
	r.printf("%-*s: %s\n", labelWidth, label, value)
}

func (r *Reporter) rule() {
	r.printf("%s\n", strings.Repeat("=", ruleWidth))
}

// printf keeps the first write error and drops every later write.
func (r *Reporter) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	if _, err := fmt.Fprintf(r.w, format, args...); err != nil {
		r.err = fmt.Errorf("write report: %w", err)
	}
}

func (r *Reporter) flush() error {
	err := r.err
	r.err = nil
	return err
}

func (r *Reporter) amount(v float64) string {
	return humanize.FormatFloat(amountFormat, v) + " " + r.unit
}

func count(n int) string {
	return humanize.Comma(int64(n))
}

func presence(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
