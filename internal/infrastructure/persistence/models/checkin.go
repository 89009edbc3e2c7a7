package models

import (
	"time"

	"github.com/activityhub/backend/internal/domain/checkin"
	"github.com/activityhub/backend/internal/domain/geo"
	"github.com/google/uuid"
)

// PeriodColumns are the check-in/out columns shared by both record tables
type PeriodColumns struct {
	CheckInAt         time.Time `gorm:"not null;index"`
	CheckOutAt        *time.Time
	CheckInLatitude   *float64
	CheckInLongitude  *float64
	CheckOutLatitude  *float64
	CheckOutLongitude *float64
}

func periodColumns(p checkin.Period) PeriodColumns {
	c := PeriodColumns{
		CheckInAt:  p.CheckInAt.UTC(),
		CheckOutAt: utcPtr(p.CheckOutAt),
	}
	c.CheckInLatitude, c.CheckInLongitude = splitPoint(p.CheckInLocation)
	c.CheckOutLatitude, c.CheckOutLongitude = splitPoint(p.CheckOutLocation)
	return c
}

func (c PeriodColumns) toDomain() checkin.Period {
	return checkin.Period{
		CheckInAt:        c.CheckInAt,
		CheckOutAt:       c.CheckOutAt,
		CheckInLocation:  joinPoint(c.CheckInLatitude, c.CheckInLongitude),
		CheckOutLocation: joinPoint(c.CheckOutLatitude, c.CheckOutLongitude),
	}
}

func splitPoint(p *geo.Point) (*float64, *float64) {
	if p == nil {
		return nil, nil
	}
	lat, lon := p.Latitude, p.Longitude
	return &lat, &lon
}

func joinPoint(lat, lon *float64) *geo.Point {
	if lat == nil || lon == nil {
		return nil
	}
	p := geo.NewPoint(*lat, *lon)
	return &p
}

// CheckRecordModel is the persistence model for checkin.CheckRecord.
// (user_id, activity_id) is unique.
type CheckRecordModel struct {
	BaseModel
	ActivityID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_check_records_user_activity;index"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_check_records_user_activity"`
	PeriodColumns
}

// TableName returns the table name for GORM
func (CheckRecordModel) TableName() string {
	return "activity_check_records"
}

// ToDomain converts the persistence model to a domain CheckRecord
func (m *CheckRecordModel) ToDomain() *checkin.CheckRecord {
	return &checkin.CheckRecord{
		ID:         m.ID,
		ActivityID: m.ActivityID,
		UserID:     m.UserID,
		Period:     m.PeriodColumns.toDomain(),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// CheckRecordModelFromDomain creates a persistence model from a domain CheckRecord
func CheckRecordModelFromDomain(r *checkin.CheckRecord) *CheckRecordModel {
	return &CheckRecordModel{
		BaseModel: BaseModel{
			ID:        r.ID,
			CreatedAt: r.CreatedAt.UTC(),
			UpdatedAt: r.UpdatedAt.UTC(),
		},
		ActivityID:    r.ActivityID,
		UserID:        r.UserID,
		PeriodColumns: periodColumns(r.Period),
	}
}

// CasualCheckRecordModel is the persistence model for checkin.CasualCheckRecord
type CasualCheckRecordModel struct {
	BaseModel
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`
	PeriodColumns
}

// TableName returns the table name for GORM
func (CasualCheckRecordModel) TableName() string {
	return "casual_check_records"
}

// ToDomain converts the persistence model to a domain CasualCheckRecord
func (m *CasualCheckRecordModel) ToDomain() *checkin.CasualCheckRecord {
	return &checkin.CasualCheckRecord{
		ID:        m.ID,
		UserID:    m.UserID,
		Period:    m.PeriodColumns.toDomain(),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// CasualCheckRecordModelFromDomain creates a persistence model from a domain CasualCheckRecord
func CasualCheckRecordModelFromDomain(r *checkin.CasualCheckRecord) *CasualCheckRecordModel {
	return &CasualCheckRecordModel{
		BaseModel: BaseModel{
			ID:        r.ID,
			CreatedAt: r.CreatedAt.UTC(),
			UpdatedAt: r.UpdatedAt.UTC(),
		},
		UserID:        r.UserID,
		PeriodColumns: periodColumns(r.Period),
	}
}

// AllModels lists every model, in dependency order, for AutoMigrate in tests
func AllModels() []any {
	return []any{
		&UserModel{},
		&ActivityModel{},
		&ActivityStaffModel{},
		&RegistrationModel{},
		&CheckRecordModel{},
		&CasualCheckRecordModel{},
	}
}
