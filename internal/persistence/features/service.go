// Package features persists emitted feature rows to Postgres. Persistence
// is optional: without a DSN the pipeline only writes CSV.
package features

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"featurepipe/pkg/feature"
)

const insertBatchSize = 500

const schemaDDL = `
CREATE TABLE IF NOT EXISTS feature_rows (
    ticker        TEXT             NOT NULL,
    trade_date    DATE             NOT NULL,
    open          DOUBLE PRECISION NOT NULL,
    high          DOUBLE PRECISION NOT NULL,
    low           DOUBLE PRECISION NOT NULL,
    close         DOUBLE PRECISION NOT NULL,
    volume        DOUBLE PRECISION NOT NULL,
    sma_short     DOUBLE PRECISION,
    sma_long      DOUBLE PRECISION,
    macd          DOUBLE PRECISION,
    signal        DOUBLE PRECISION,
    histogram     DOUBLE PRECISION,
    rsi           DOUBLE PRECISION,
    candle_color  SMALLINT         NOT NULL,
    candle_high   DOUBLE PRECISION NOT NULL,
    candle_low    DOUBLE PRECISION NOT NULL,
    candle_mid    DOUBLE PRECISION NOT NULL,
    updated_at    TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
    PRIMARY KEY (ticker, trade_date)
)`

// Service writes feature rows through a shared SQL connection.
type Service struct {
	conn sqlx.SqlConn
}

// NewService wires a persistence service. Returns nil when no connection is
// configured, so callers can treat persistence as absent.
func NewService(conn sqlx.SqlConn) *Service {
	if conn == nil {
		return nil
	}
	return &Service{conn: conn}
}

// EnsureSchema creates the feature table when missing.
func (s *Service) EnsureSchema(ctx context.Context) error {
	if s == nil {
		return nil
	}
	if _, err := s.conn.ExecCtx(ctx, schemaDDL); err != nil {
		return fmt.Errorf("features: ensure schema: %w", err)
	}
	return nil
}

// SaveRows upserts rows keyed by (ticker, trade_date) in batches. Absent
// indicator values (NaN) are stored as SQL NULL.
func (s *Service) SaveRows(ctx context.Context, rows []feature.Row) error {
	if s == nil || len(rows) == 0 {
		return nil
	}
	for start := 0; start < len(rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := s.saveBatch(ctx, rows[start:end]); err != nil {
			return err
		}
	}
	logx.WithContext(ctx).Infof("features: persisted %d rows", len(rows))
	return nil
}

func (s *Service) saveBatch(ctx context.Context, rows []feature.Row) error {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`INSERT INTO feature_rows (
ticker, trade_date, open, high, low, close, volume,
sma_short, sma_long, macd, signal, histogram, rsi,
candle_color, candle_high, candle_low, candle_mid
) VALUES `)

	for i, r := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 17
		sb.WriteString("(")
		for j := 1; j <= 17; j++ {
			if j > 1 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", base+j)
		}
		sb.WriteString(")")
		args = append(args,
			r.Ticker, r.Date.Format("2006-01-02"),
			r.Open, r.High, r.Low, r.Close, r.Volume,
			nullable(r.SMAShort), nullable(r.SMALong),
			nullable(r.MACD), nullable(r.Signal), nullable(r.Histogram),
			nullable(r.RSI),
			r.CandleColor, r.CandleHigh, r.CandleLow, r.CandleMid,
		)
	}

	sb.WriteString(`
ON CONFLICT (ticker, trade_date) DO UPDATE SET
open = EXCLUDED.open,
high = EXCLUDED.high,
low = EXCLUDED.low,
close = EXCLUDED.close,
volume = EXCLUDED.volume,
sma_short = EXCLUDED.sma_short,
sma_long = EXCLUDED.sma_long,
macd = EXCLUDED.macd,
signal = EXCLUDED.signal,
histogram = EXCLUDED.histogram,
rsi = EXCLUDED.rsi,
candle_color = EXCLUDED.candle_color,
candle_high = EXCLUDED.candle_high,
candle_low = EXCLUDED.candle_low,
candle_mid = EXCLUDED.candle_mid,
updated_at = NOW()`)

	if _, err := s.conn.ExecCtx(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("features: save batch of %d: %w", len(rows), err)
	}
	return nil
}

func nullable(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
