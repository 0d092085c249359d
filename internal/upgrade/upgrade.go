// Package upgrade implements the premium upgrade flow as an explicit
// state machine: signup -> profile -> payment -> complete. Transitions
// are strictly forward; a failed step reports its error and stays put.
// A Flow lives for one modal lifetime; reopening the modal means a new
// Flow starting at signup.
package upgrade

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"strangerlink/backend/internal/auth"
	"strangerlink/backend/internal/models"
	"strangerlink/backend/internal/storage"
)

type Step string

const (
	StepSignup   Step = "signup"
	StepProfile  Step = "profile"
	StepPayment  Step = "payment"
	StepComplete Step = "complete"
)

var (
	ErrWrongStep      = errors.New("operation not valid for current step")
	ErrGenderRequired = errors.New("gender must be one of male, female, other")
	ErrUnderage       = errors.New("age must be at least 18")
	ErrCountryEmpty   = errors.New("country is required")
)

// ProfileInput is the profile-completion form.
type ProfileInput struct {
	Gender    string   `json:"gender"`
	Age       int      `json:"age"`
	Country   string   `json:"country"`
	Height    int      `json:"height"`
	Race      string   `json:"race"`
	Religion  string   `json:"religion"`
	Interests []string `json:"interests"`
}

// Validate enforces the required fields; height, race, religion and
// interests are optional.
func (in ProfileInput) Validate() error {
	switch in.Gender {
	case "male", "female", "other":
	default:
		return ErrGenderRequired
	}
	if in.Age < 18 {
		return ErrUnderage
	}
	if in.Country == "" {
		return ErrCountryEmpty
	}
	return nil
}

// AnonClearer removes the anonymous identity once the upgrade completes.
type AnonClearer interface {
	Clear(ctx context.Context, deviceKey string)
}

// Flow tracks one upgrade attempt.
type Flow struct {
	step      Step
	deviceKey string
	user      *models.User

	auth  *auth.Service
	store storage.Storage
	anon  AnonClearer
}

// NewFlow starts a flow at the signup step. deviceKey identifies the
// visitor's anonymous record, cleared on completion; it may be empty
// for visitors who never held one.
func NewFlow(authSvc *auth.Service, store storage.Storage, anon AnonClearer, deviceKey string) *Flow {
	return &Flow{
		step:      StepSignup,
		deviceKey: deviceKey,
		auth:      authSvc,
		store:     store,
		anon:      anon,
	}
}

func (f *Flow) Step() Step { return f.step }

// UserID returns the identity created by Signup, "" before that.
func (f *Flow) UserID() string {
	if f.user == nil {
		return ""
	}
	return f.user.ID
}

// Signup creates the account and advances to the profile step. On
// failure (duplicate email, short password) the flow stays at signup.
func (f *Flow) Signup(email, password string) (token string, err error) {
	if f.step != StepSignup {
		return "", fmt.Errorf("%w: signup during %s", ErrWrongStep, f.step)
	}

	user, token, err := f.auth.Register(email, password)
	if err != nil {
		return "", err
	}

	f.user = user
	f.step = StepProfile
	return token, nil
}

// SubmitProfile validates and inserts the profile row with
// is_premium=false, then advances to payment. Failure stays at profile.
func (f *Flow) SubmitProfile(in ProfileInput) error {
	if f.step != StepProfile {
		return fmt.Errorf("%w: profile submit during %s", ErrWrongStep, f.step)
	}
	if err := in.Validate(); err != nil {
		return err
	}

	profile := &models.UserProfile{
		UserID:    f.user.ID,
		Email:     f.user.Email,
		Gender:    in.Gender,
		Country:   in.Country,
		Age:       in.Age,
		Height:    in.Height,
		Race:      in.Race,
		Religion:  in.Religion,
		Interests: pq.StringArray(in.Interests),
		IsPremium: false,
	}
	if err := f.store.SaveProfile(profile); err != nil {
		return err
	}

	f.step = StepPayment
	return nil
}

// ConfirmPayment simulates a successful payment for the selected plan:
// the premium flag flips, the anonymous record is cleared and the flow
// completes. There is no real payment integration.
func (f *Flow) ConfirmPayment(ctx context.Context, planID string) error {
	if f.step != StepPayment {
		return fmt.Errorf("%w: payment during %s", ErrWrongStep, f.step)
	}
	if _, ok := PlanByID(planID); !ok {
		return fmt.Errorf("unknown plan %q", planID)
	}

	if err := f.store.SetPremium(f.user.ID, true); err != nil {
		return err
	}

	if f.deviceKey != "" {
		f.anon.Clear(ctx, f.deviceKey)
	}

	f.step = StepComplete
	return nil
}
