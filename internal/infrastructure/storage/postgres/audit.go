package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	appctx "stockcontrol/internal/core/context"
	"stockcontrol/internal/domain/audit"
)

// compressionAlgo tags how the changes payload is stored.
type compressionAlgo string

const (
	compressionNone compressionAlgo = "none"
	compressionZstd compressionAlgo = "zstd"
)

var _ audit.Logger = (*AuditService)(nil)

// AuditService writes audit-log entries. Change payloads above the
// threshold are stored zstd-compressed.
type AuditService struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewAuditService creates an audit service.
func NewAuditService(txManager *TxManager) (*AuditService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditService{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

// LogChange records one entity change, attributing it to the user and
// company carried by ctx.
func (s *AuditService) LogChange(ctx context.Context, entityType string, entityID int64, action audit.Action, changes map[string]any) error {
	payload, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("marshal changes: %w", err)
	}

	var userID, companyID int64
	if u := appctx.GetUser(ctx); u != nil {
		userID = u.UserID
		companyID = u.CompanyID
	}

	algo := compressionNone
	var compressed []byte
	if len(payload) > s.compressThreshold {
		compressed = s.encoder.EncodeAll(payload, nil)
		payload = nil
		algo = compressionZstd
	}

	query := `
		INSERT INTO audit_log (
			company_id, entity_type, entity_id, action, user_id,
			changes, changes_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	querier := s.txManager.GetQuerier(ctx)
	_, err = querier.Exec(ctx, query,
		companyID, entityType, entityID, string(action), userID,
		payload, compressed, string(algo), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// EntityHistory returns entries for one entity, newest first, with
// compressed payloads transparently decompressed.
func (s *AuditService) EntityHistory(ctx context.Context, entityType string, entityID int64, limit int) ([]audit.Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, company_id, entity_type, entity_id, action, user_id,
		       changes, changes_compressed, compression_algo, created_at
		FROM audit_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	type row struct {
		audit.Entry
		ChangesCompressed []byte          `db:"changes_compressed"`
		CompressionAlgo   compressionAlgo `db:"compression_algo"`
	}

	var rows []row
	err := pgxscan.Select(ctx, s.txManager.GetQuerier(ctx), &rows, query, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit history: %w", err)
	}

	entries := make([]audit.Entry, 0, len(rows))
	for i := range rows {
		e := rows[i].Entry
		if rows[i].CompressionAlgo == compressionZstd && len(rows[i].ChangesCompressed) > 0 {
			decompressed, err := s.decoder.DecodeAll(rows[i].ChangesCompressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress changes: %w", err)
			}
			e.Changes = decompressed
		}
		entries = append(entries, e)
	}
	return entries, nil
}
