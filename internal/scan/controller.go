// Package scan turns raw scanner input into stored inventory items.
//
// A scan moves through Idle, Decoding, then either Rejected or Resolving,
// Persisting and Reported. Decode failures never touch the store. A missing
// product is reported but does not stop the scan; a store failure does.
package scan

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/lector/internal/logger"
	"github.com/mesh-intelligence/lector/pkg/barcode"
	"github.com/mesh-intelligence/lector/pkg/types"
)

// NoSession tells Scan there is no active session: the barcode is decoded
// and looked up but not stored.
const NoSession int64 = 0

// State is a step of the scan state machine.
type State int

// Scan states.
const (
	Idle State = iota
	Decoding
	Rejected
	Resolving
	Persisting
	Reported
)

var stateNames = [...]string{"idle", "decoding", "rejected", "resolving", "persisting", "reported"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Store is the store subset a scan needs.
type Store interface {
	FindProduct(code string) (*types.Product, error)
	AppendItem(sessionID int64, item *types.Item) (int64, error)
}

// Result reports one scan. Err is set iff Success is false. Product is nil
// when the code is not in the catalog; ItemID is zero when nothing was
// stored.
type Result struct {
	ID         uuid.UUID        `json:"id"`
	Success    bool             `json:"success"`
	Err        error            `json:"-"`
	Error      string           `json:"error,omitempty"`
	RawBarcode string           `json:"raw_barcode"`
	Decoded    *barcode.Decoded `json:"decoded,omitempty"`
	Product    *types.Product   `json:"product,omitempty"`
	ItemID     int64            `json:"item_id,omitempty"`
	State      State            `json:"-"`
}

// Controller runs scans one at a time against a store.
type Controller struct {
	mu      sync.Mutex
	store   Store
	metrics *Metrics
	logger  *zap.Logger

	// state is read without mu so callers can watch a scan in flight.
	state atomic.Int32
}

// NewController returns a Controller. Nil metrics or logger disable them.
func NewController(store Store, metrics *Metrics, log *zap.Logger) *Controller {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Controller{
		store:   store,
		metrics: metrics,
		logger:  logger.OrNop(log),
	}
}

// State returns the state of the scan in flight, or of the last scan when
// none is running. It does not wait for a running scan.
func (c *Controller) State() State {
	return State(c.state.Load())
}

func (c *Controller) setState(s State) {
	c.state.Store(int32(s))
}

// Scan processes raw for sessionID. Concurrent calls wait their turn.
func (c *Controller) Scan(raw string, sessionID int64) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := Result{ID: newScanID(), RawBarcode: raw}
	log := c.logger.With(zap.Stringer("scan_id", res.ID), zap.Int64("session_id", sessionID))

	c.setState(Decoding)
	decoded, err := barcode.Decode(raw)
	if err != nil {
		c.setState(Rejected)
		res.State = Rejected
		res.fail(err)
		c.metrics.Scans.WithLabelValues(OutcomeRejected).Inc()
		log.Info("scan rejected", zap.String("raw", raw), zap.Error(err))
		return res
	}
	res.Decoded = decoded
	res.RawBarcode = decoded.RawBarcode

	c.setState(Resolving)
	product, err := c.store.FindProduct(decoded.ProductCodeNormalized)
	switch {
	case err == nil:
		res.Product = product
	case errors.Is(err, types.ErrNotFound):
		c.metrics.ProductMisses.Inc()
		log.Info("product not in catalog", zap.String("code", decoded.ProductCodeNormalized))
	default:
		c.metrics.ProductMisses.Inc()
		log.Warn("product lookup failed", zap.String("code", decoded.ProductCodeNormalized), zap.Error(err))
	}

	if sessionID != NoSession {
		c.setState(Persisting)
		item := &types.Item{
			RawBarcode:  decoded.RawBarcode,
			ProductCode: decoded.ProductCode,
			Weight:      decoded.Weight,
			Units:       decoded.Units,
			Batch:       decoded.Batch,
			Consecutive: decoded.Consecutive,
		}
		id, err := c.store.AppendItem(sessionID, item)
		if err != nil {
			c.setState(Reported)
			res.State = Reported
			res.fail(err)
			c.metrics.Scans.WithLabelValues(OutcomeFailed).Inc()
			log.Error("storing scan failed", zap.Error(err))
			return res
		}
		res.ItemID = id
	}

	c.setState(Reported)
	res.State = Reported
	res.Success = true
	c.metrics.Scans.WithLabelValues(OutcomeAccepted).Inc()
	log.Debug("scan accepted",
		zap.String("product", decoded.ProductCodeNormalized),
		zap.Stringer("weight", decoded.Weight),
		zap.Stringer("units", decoded.Units),
		zap.Int64("item_id", res.ItemID),
	)
	return res
}

func (r *Result) fail(err error) {
	r.Success = false
	r.Err = err
	r.Error = err.Error()
}

// Process reads newline-terminated scans from r and passes each result to
// fn. Blank lines are skipped. It stops at EOF, on a read error, or as soon
// as ctx is done, even while waiting for input. A read still blocked in r
// at that point finishes in the background and its line is dropped.
func (c *Controller) Process(ctx context.Context, r io.Reader, sessionID int64, fn func(Result)) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("reading scans: %w", err)
				}
				return ctx.Err()
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			fn(c.Scan(line, sessionID))
		}
	}
}

func newScanID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
