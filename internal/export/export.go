// Package export renders an inventory session as the positional text file
// the back office imports.
//
// Each item becomes one line of 17 comma-separated fields:
//
//	row,date,time,document,product,qty1,qty2,,,,,batch,,,,barcode,description
//
// Lines are joined with "\n" with no trailing newline.
package export

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/lector/internal/logger"
	"github.com/mesh-intelligence/lector/pkg/types"
)

// FieldCount is the number of fields on every export line.
const FieldCount = 17

var hundred = decimal.NewFromInt(100)

// Source is the store subset the engine reads.
type Source interface {
	GetSession(id int64) (*types.Session, error)
	ListItems(sessionID int64) ([]types.Item, error)
	FindProduct(code string) (*types.Product, error)
}

// Export is a rendered session.
type Export struct {
	SessionID int64
	Content   string
	Filename  string
	Lines     int
}

// Engine renders sessions from a Source.
type Engine struct {
	src    Source
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocation sets the zone dates and times are rendered in. The default
// is time.Local.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithClock sets the clock used for the filename timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger.OrNop(l) }
}

// New returns an Engine reading from src.
func New(src Source, opts ...Option) *Engine {
	e := &Engine{
		src:    src,
		loc:    time.Local,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExportSession renders session id. It returns types.ErrNotFound for an
// unknown session and types.ErrEmptySession when the session has no items.
// Product descriptions are best effort: a failed lookup leaves the field
// empty.
func (e *Engine) ExportSession(id int64) (*Export, error) {
	session, err := e.src.GetSession(id)
	if err != nil {
		return nil, fmt.Errorf("exporting session %d: %w", id, err)
	}

	items, err := e.src.ListItems(id)
	if err != nil {
		return nil, fmt.Errorf("exporting session %d: %w", id, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("exporting session %d: %w", id, types.ErrEmptySession)
	}

	lines := make([]string, 0, len(items))
	for i, item := range items {
		lines = append(lines, Line(i+1, session, item, e.describe(item.ProductCode), e.loc))
	}

	return &Export{
		SessionID: id,
		Content:   strings.Join(lines, "\n"),
		Filename:  Filename(session, e.now()),
		Lines:     len(lines),
	}, nil
}

func (e *Engine) describe(code string) string {
	p, err := e.src.FindProduct(code)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			e.logger.Warn("product lookup failed during export", zap.String("code", code), zap.Error(err))
		}
		return ""
	}
	return strings.ReplaceAll(p.Description, ",", " ")
}

// Line renders one item. row is 1-based; description must already be free
// of commas.
func Line(row int, session *types.Session, item types.Item, description string, loc *time.Location) string {
	at := item.ScannedAt.In(loc)
	fields := [FieldCount]string{
		strconv.Itoa(row),
		fmt.Sprintf("%d/%d/%d", at.Day(), int(at.Month()), at.Year()),
		at.Format("15:04:05"),
		session.DocumentNumber,
		types.NormalizeCode(item.ProductCode),
		hundredths(item.Weight),
		hundredths(item.Units),
		"", "", "", "",
		item.Batch,
		"",
		"", "",
		item.RawBarcode,
		description,
	}
	return strings.Join(fields[:], ",")
}

// nameReplacer keeps a document number from adding path elements.
var nameReplacer = strings.NewReplacer("/", "_", "\\", "_", "\x00", "_")

// Filename returns inventario_<document-or-id>_<epoch millis>.txt. Path
// separators in the document number become underscores.
func Filename(session *types.Session, at time.Time) string {
	return fmt.Sprintf("inventario_%s_%d.txt", nameReplacer.Replace(session.ExportName()), at.UnixMilli())
}

// hundredths renders q*100 rounded to the nearest integer.
func hundredths(q decimal.Decimal) string {
	return strconv.FormatInt(q.Mul(hundred).Round(0).IntPart(), 10)
}
