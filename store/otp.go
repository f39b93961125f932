package store

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// DefaultOTPTTL is how long a login code stays valid after it is issued.
const DefaultOTPTTL = 10 * time.Minute

type otpRow struct {
	bun.BaseModel `bun:"table:otp_codes"`

	Phone     string    `bun:"phone,pk"`
	Code      string    `bun:"code,notnull"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
}

// OTPStore keeps one active login code per phone number. Issuing a new code
// replaces the previous one; consuming a code deletes it, so a code can be
// used at most once.
type OTPStore struct {
	db  *bun.DB
	ttl time.Duration
	now func() time.Time
}

func NewOTPStore(db *bun.DB) *OTPStore {
	return &OTPStore{db: db, ttl: DefaultOTPTTL, now: time.Now}
}

func (s *OTPStore) Put(ctx context.Context, phone, code string) error {
	row := &otpRow{
		Phone:     phone,
		Code:      code,
		ExpiresAt: s.now().Add(s.ttl),
	}
	_, err := s.db.NewInsert().Model(row).
		On("CONFLICT (phone) DO UPDATE").
		Set("code = EXCLUDED.code").
		Set("expires_at = EXCLUDED.expires_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

func (s *OTPStore) Consume(ctx context.Context, phone, code string) (bool, error) {
	res, err := s.db.NewDelete().Model((*otpRow)(nil)).
		Where("phone = ?", phone).
		Where("code = ?", code).
		Where("expires_at > ?", s.now()).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}
	return n == 1, nil
}
