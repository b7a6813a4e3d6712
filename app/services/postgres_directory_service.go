package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/parcel-tracker/app/models"
	"github.com/parcel-tracker/helpers/utils"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

const parcelColumns = `id, sub_district, village, address, parcel_count, on_truck,
	display_order, latitude, longitude, created_at, updated_at`

const createParcelsTable = `
CREATE TABLE IF NOT EXISTS parcels (
	id            TEXT PRIMARY KEY,
	sub_district  TEXT NOT NULL,
	village       TEXT NOT NULL,
	address       TEXT NOT NULL,
	parcel_count  INTEGER NOT NULL DEFAULT 0,
	on_truck      BOOLEAN NOT NULL DEFAULT FALSE,
	display_order INTEGER,
	latitude      TEXT,
	longitude     TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (sub_district, village, address)
)`

// PostgresDirectoryService AddressDirectory lưu trên PostgreSQL (bảng parcels)
type PostgresDirectoryService struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresDirectoryService mở kết nối và tạo bảng nếu chưa có
func NewPostgresDirectoryService(dsn string, logger *zap.Logger) (*PostgresDirectoryService, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("không thể mở PostgreSQL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("không thể kết nối PostgreSQL: %w", err)
	}
	if _, err := db.ExecContext(ctx, createParcelsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("lỗi tạo bảng parcels: %w", err)
	}

	return &PostgresDirectoryService{db: db, logger: logger}, nil
}

// Fetch lấy record theo sub-district/village
func (pds *PostgresDirectoryService) Fetch(ctx context.Context, subDistrict, village string) ([]models.AddressRecord, error) {
	query := `SELECT ` + parcelColumns + ` FROM parcels
		WHERE ($1 = '' OR sub_district = $1) AND ($2 = '' OR village = $2)
		ORDER BY on_truck DESC, display_order ASC NULLS LAST, created_at ASC, id ASC`

	rows, err := pds.db.QueryContext(ctx, query, subDistrict, village)
	if err != nil {
		return nil, newCollaboratorError(CollaboratorStore, "fetch", err)
	}
	defer rows.Close()

	records := make([]models.AddressRecord, 0)
	for rows.Next() {
		record, err := scanParcel(rows)
		if err != nil {
			return nil, newCollaboratorError(CollaboratorStore, "fetch", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, newCollaboratorError(CollaboratorStore, "fetch", err)
	}
	return records, nil
}

// FetchAll lấy toàn bộ record
func (pds *PostgresDirectoryService) FetchAll(ctx context.Context) ([]models.AddressRecord, error) {
	return pds.Fetch(ctx, "", "")
}

// Get lấy record theo id
func (pds *PostgresDirectoryService) Get(ctx context.Context, id string) (*models.AddressRecord, error) {
	row := pds.db.QueryRowContext(ctx, `SELECT `+parcelColumns+` FROM parcels WHERE id = $1`, id)
	record, err := scanParcel(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, newCollaboratorError(CollaboratorStore, "get", err)
	}
	return record, nil
}

// Create thêm record mới, display order = max + 1
func (pds *PostgresDirectoryService) Create(ctx context.Context, record *models.AddressRecord) (*models.AddressRecord, error) {
	id := record.ID
	if id == "" {
		id = utils.GenerateUUID()
	}

	query := `INSERT INTO parcels (id, sub_district, village, address, parcel_count, on_truck,
			display_order, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6,
			(SELECT COALESCE(MAX(display_order), 0) + 1 FROM parcels), $7, $8)
		RETURNING ` + parcelColumns

	row := pds.db.QueryRowContext(ctx, query, id, record.SubDistrict, record.Village, record.Address,
		record.ParcelCount, record.OnTruck, nullString(record.Latitude), nullString(record.Longitude))
	created, err := scanParcel(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateAddress
		}
		return nil, newCollaboratorError(CollaboratorStore, "create", err)
	}

	pds.logger.Info("Đã thêm parcel",
		zap.String("record_id", created.ID),
		zap.String("sub_district", created.SubDistrict),
		zap.String("village", created.Village))
	return created, nil
}

// Update cập nhật record theo id hoặc (sub-district, village, address)
func (pds *PostgresDirectoryService) Update(ctx context.Context, record *models.AddressRecord) (*models.AddressRecord, error) {
	where, args := selectorWhere(record, 8)
	query := `UPDATE parcels SET sub_district = $1, village = $2, address = $3, parcel_count = $4,
			on_truck = $5, latitude = $6, longitude = $7, updated_at = NOW()
		WHERE ` + where + ` RETURNING ` + parcelColumns

	params := append([]interface{}{record.SubDistrict, record.Village, record.Address, record.ParcelCount,
		record.OnTruck, nullString(record.Latitude), nullString(record.Longitude)}, args...)

	updated, err := scanParcel(pds.db.QueryRowContext(ctx, query, params...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicateAddress
		}
		return nil, newCollaboratorError(CollaboratorStore, "update", err)
	}
	return updated, nil
}

// Delete xóa record
func (pds *PostgresDirectoryService) Delete(ctx context.Context, record *models.AddressRecord) error {
	where, args := selectorWhere(record, 1)
	result, err := pds.db.ExecContext(ctx, `DELETE FROM parcels WHERE `+where, args...)
	if err != nil {
		return newCollaboratorError(CollaboratorStore, "delete", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return newCollaboratorError(CollaboratorStore, "delete", err)
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Reorder cập nhật display order trong một transaction
func (pds *PostgresDirectoryService) Reorder(ctx context.Context, updates []models.OrderUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	tx, err := pds.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, newCollaboratorError(CollaboratorStore, "reorder", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE parcels SET display_order = $1, updated_at = NOW() WHERE id = $2`)
	if err != nil {
		return 0, newCollaboratorError(CollaboratorStore, "reorder", err)
	}
	defer stmt.Close()

	updated := 0
	for _, u := range updates {
		result, err := stmt.ExecContext(ctx, u.DisplayOrder, u.ID)
		if err != nil {
			return 0, newCollaboratorError(CollaboratorStore, "reorder", err)
		}
		if n, _ := result.RowsAffected(); n > 0 {
			updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, newCollaboratorError(CollaboratorStore, "reorder", err)
	}
	return updated, nil
}

// applyMutationQuery vế phải của SET đọc giá trị cũ của row: $2 chỉ ghi đè khi record chưa lên xe
const applyMutationQuery = `UPDATE parcels SET
		on_truck = COALESCE($1, on_truck),
		parcel_count = CASE
			WHEN $2::integer IS NULL THEN parcel_count
			WHEN on_truck THEN parcel_count + $2::integer
			ELSE $2::integer
		END + $3,
		updated_at = NOW()
	WHERE id = $4
	RETURNING ` + parcelColumns

// ApplyMutation áp dụng mutation trong một câu UPDATE, count tăng bằng parcel_count = parcel_count + delta
func (pds *PostgresDirectoryService) ApplyMutation(ctx context.Context, mutation *models.Mutation) (*models.AddressRecord, error) {
	var onTruck sql.NullBool
	if mutation.OnTruck != nil {
		onTruck = sql.NullBool{Bool: *mutation.OnTruck, Valid: true}
	}
	var setCount sql.NullInt64
	if mutation.SetParcelCount != nil {
		setCount = sql.NullInt64{Int64: int64(*mutation.SetParcelCount), Valid: true}
	}

	updated, err := scanParcel(pds.db.QueryRowContext(ctx, applyMutationQuery, onTruck, setCount, mutation.ParcelCountDelta, mutation.RecordID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, newCollaboratorError(CollaboratorStore, "apply_mutation", err)
	}
	return updated, nil
}

// ResetAll bỏ cờ lên xe cho toàn bộ record
func (pds *PostgresDirectoryService) ResetAll(ctx context.Context) (int64, error) {
	result, err := pds.db.ExecContext(ctx, `UPDATE parcels SET on_truck = FALSE, parcel_count = 0, updated_at = NOW()`)
	if err != nil {
		return 0, newCollaboratorError(CollaboratorStore, "reset", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, newCollaboratorError(CollaboratorStore, "reset", err)
	}
	return n, nil
}

// Locations sub-district -> villages
func (pds *PostgresDirectoryService) Locations(ctx context.Context) (models.Locations, error) {
	rows, err := pds.db.QueryContext(ctx,
		`SELECT DISTINCT sub_district, village FROM parcels ORDER BY sub_district, village`)
	if err != nil {
		return nil, newCollaboratorError(CollaboratorStore, "locations", err)
	}
	defer rows.Close()

	var pairs []models.AddressRecord
	for rows.Next() {
		var p models.AddressRecord
		if err := rows.Scan(&p.SubDistrict, &p.Village); err != nil {
			return nil, newCollaboratorError(CollaboratorStore, "locations", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, newCollaboratorError(CollaboratorStore, "locations", err)
	}
	return BuildLocations(pairs), nil
}

// VillageNames mã village -> tên đầy đủ
func (pds *PostgresDirectoryService) VillageNames(ctx context.Context) (map[string]string, error) {
	rows, err := pds.db.QueryContext(ctx, `SELECT DISTINCT village FROM parcels`)
	if err != nil {
		return nil, newCollaboratorError(CollaboratorStore, "village_names", err)
	}
	defer rows.Close()

	var villages []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, newCollaboratorError(CollaboratorStore, "village_names", err)
		}
		villages = append(villages, v)
	}
	if err := rows.Err(); err != nil {
		return nil, newCollaboratorError(CollaboratorStore, "village_names", err)
	}
	return BuildVillageNames(villages), nil
}

// Close đóng kết nối
func (pds *PostgresDirectoryService) Close() error {
	return pds.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanParcel(row rowScanner) (*models.AddressRecord, error) {
	var r models.AddressRecord
	var order sql.NullInt64
	var lat, lng sql.NullString

	err := row.Scan(&r.ID, &r.SubDistrict, &r.Village, &r.Address, &r.ParcelCount, &r.OnTruck,
		&order, &lat, &lng, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if order.Valid {
		v := int(order.Int64)
		r.DisplayOrder = &v
	}
	if lat.Valid {
		r.Latitude = &lat.String
	}
	if lng.Valid {
		r.Longitude = &lng.String
	}
	return &r, nil
}

// selectorWhere điều kiện WHERE theo id hoặc bộ ba địa chỉ, placeholder bắt đầu từ $start
func selectorWhere(record *models.AddressRecord, start int) (string, []interface{}) {
	if record.ID != "" {
		return fmt.Sprintf("id = $%d", start), []interface{}{record.ID}
	}
	return fmt.Sprintf("sub_district = $%d AND village = $%d AND address = $%d", start, start+1, start+2),
		[]interface{}{record.SubDistrict, record.Village, record.Address}
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
