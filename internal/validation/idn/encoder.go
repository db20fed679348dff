// Package idn turns homograph candidates into their ASCII compatible form.
package idn

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"
)

type Profile string

const (
	// ProfileRegistration validates every label against IDNA2008 without
	// remapping: a character UTS #46 would fold (fullwidth, mathematical,
	// circled or uppercase letters) makes the candidate invalid.
	ProfileRegistration Profile = "registration"
	// ProfileLookup runs UTS #46 lookup processing but still rejects a
	// candidate whose characters were remapped along the way.
	ProfileLookup Profile = "lookup"

	DefaultProfile = ProfileRegistration
)

var (
	ErrEmptyLabel = errors.New("empty after normalization")
	ErrRemapped   = errors.New("candidate was remapped by UTS #46")
)

type Encoder struct {
	profile *idna.Profile
	name    Profile
	logger  *logrus.Logger
}

func NewEncoder(profile Profile, logger *logrus.Logger) (*Encoder, error) {
	if logger == nil {
		logger = logrus.New()
	}

	var p *idna.Profile
	switch profile {
	case ProfileRegistration, "":
		profile = ProfileRegistration
		p = idna.New(
			idna.ValidateForRegistration(),
			idna.CheckHyphens(true),
			idna.CheckJoiners(true),
			idna.Transitional(false),
		)
	case ProfileLookup:
		p = idna.New(
			idna.MapForLookup(),
			idna.BidiRule(),
			idna.VerifyDNSLength(true),
			idna.Transitional(false),
		)
	default:
		return nil, fmt.Errorf("unknown encoder profile %q", profile)
	}

	return &Encoder{profile: p, name: profile, logger: logger}, nil
}

func (e *Encoder) Profile() Profile { return e.name }

// ToASCII NFC-normalizes candidate and IDNA encodes it. The result always
// decodes back to the normalized candidate.
func (e *Encoder) ToASCII(candidate string) (string, error) {
	normalized := norm.NFC.String(candidate)
	if normalized == "" {
		return "", ErrEmptyLabel
	}
	ascii, err := e.profile.ToASCII(normalized)
	if err != nil {
		return "", err
	}
	if ascii == "" {
		return "", ErrEmptyLabel
	}

	back, err := e.profile.ToUnicode(ascii)
	if err != nil {
		return "", err
	}
	if back != normalized {
		return "", fmt.Errorf("%w: %q became %q", ErrRemapped, normalized, back)
	}
	return ascii, nil
}

// Encode is ToASCII for callers that skip failures: ok is false when the
// candidate cannot be encoded.
func (e *Encoder) Encode(candidate string) (string, bool) {
	ascii, err := e.ToASCII(candidate)
	if err != nil {
		e.logger.Debugf("Skipping %q: %v", candidate, err)
		return "", false
	}
	return ascii, true
}
