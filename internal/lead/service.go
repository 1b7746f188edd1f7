package lead

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Verifier checks a CAPTCHA response token.
type Verifier interface {
	Configured() bool
	Verify(ctx context.Context, token, remoteIP string) error
}

// TitleResolver finds a display title for a listing id, returning "" when
// nothing matches.
type TitleResolver interface {
	ResolveTitle(ctx context.Context, id int64) string
}

// Notifier is told about every stored lead.
type Notifier interface {
	NotifyLead(ctx context.Context, l *Lead) error
}

// Submission is a raw lead form post plus request metadata.
type Submission struct {
	Form      url.Values
	IPAddress string
	UserAgent string
	Referer   string
}

// fields is the variant-independent view of a submission.
type fields struct {
	Name    string `validate:"required"`
	Email   string `validate:"required,email"`
	Phone   string `validate:"required"`
	Country string `validate:"required"`
}

// Service validates, verifies and stores lead submissions.
type Service struct {
	repo     *Repository
	verifier Verifier
	titles   TitleResolver
	notifier Notifier
	validate *validator.Validate
}

// NewService creates a lead service. titles and notifier may be nil.
func NewService(repo *Repository, verifier Verifier, titles TitleResolver, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		verifier: verifier,
		titles:   titles,
		notifier: notifier,
		validate: validator.New(),
	}
}

// Submit processes one form post. It never returns internal error detail;
// failures come back as a user-facing message and a safe redirect target.
func (s *Service) Submit(ctx context.Context, sub Submission) Outcome {
	form := sub.Form
	if form == nil {
		form = url.Values{}
	}
	leadType := ParseType(strings.TrimSpace(form.Get("form_type")))
	fail := func(msg string) Outcome {
		return Outcome{Redirect: failureRedirect(form, sub.Referer), Error: msg}
	}

	f := fields{
		Name:    strings.TrimSpace(field(form, leadType, "name")),
		Email:   strings.TrimSpace(field(form, leadType, "email")),
		Phone:   NormalizePhone(field(form, leadType, "phone")),
		Country: strings.TrimSpace(field(form, leadType, "country")),
	}
	if msg := s.check(f); msg != "" {
		return fail(msg)
	}

	token := strings.TrimSpace(form.Get("g-recaptcha-response"))
	if token == "" {
		return fail(MsgCaptchaMissing)
	}
	if s.verifier == nil || !s.verifier.Configured() {
		slog.Error("recaptcha secret key is not configured; rejecting lead", "lead_type", leadType)
		return fail(MsgUnavailable)
	}
	if err := s.verifier.Verify(ctx, token, sub.IPAddress); err != nil {
		slog.Warn("recaptcha verification failed", "lead_type", leadType, "ip", sub.IPAddress, "error", err)
		return fail(MsgCaptchaFailed)
	}

	propertyID, _ := strconv.ParseInt(strings.TrimSpace(form.Get("property_id")), 10, 64)
	if propertyID < 0 {
		propertyID = 0
	}
	title := strings.TrimSpace(form.Get("property_title"))
	if title == "" && propertyID > 0 && s.titles != nil {
		title = s.titles.ResolveTitle(ctx, propertyID)
	}

	l := &Lead{
		Type:          leadType,
		PropertyID:    propertyID,
		PropertyTitle: Truncate(title, maxPropertyTitle),
		Name:          Truncate(f.Name, maxName),
		Email:         NormalizeEmail(f.Email),
		Phone:         f.Phone,
		Country:       Truncate(f.Country, maxCountry),
		IPAddress:     Truncate(strings.TrimSpace(sub.IPAddress), maxIPAddress),
		UserAgent:     Truncate(strings.TrimSpace(sub.UserAgent), maxUserAgent),
	}
	if leadType == TypeBrochure {
		l.BrochureURL = NormalizeBrochureURL(form.Get("brochure_url"))
	}

	saved, err := s.repo.Insert(ctx, l)
	if err != nil {
		slog.Error("saving lead", "lead_type", leadType, "property_id", propertyID, "error", err)
		return fail(MsgSaveFailed)
	}

	slog.Info("lead stored", "id", saved.ID, "lead_type", saved.Type, "property_id", saved.PropertyID)

	if s.notifier != nil {
		if err := s.notifier.NotifyLead(ctx, saved); err != nil {
			slog.Warn("lead notification failed", "id", saved.ID, "error", err)
		}
	}

	return Outcome{Redirect: SuccessPath, BrochureURL: saved.BrochureURL, Lead: saved}
}

// check validates required fields first, then the email format.
func (s *Service) check(f fields) string {
	err := s.validate.Struct(f)
	if err == nil {
		return ""
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		slog.Error("validating lead", "error", err)
		return MsgMissingFields
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return MsgMissingFields
		}
	}
	return MsgInvalidEmail
}

// field reads a variant-specific form field. Brochure forms prefix their
// inputs with "brochure_" and fall back to the plain name.
func field(form url.Values, t Type, name string) string {
	if t == TypeBrochure {
		if v := form.Get("brochure_" + name); strings.TrimSpace(v) != "" {
			return v
		}
	}
	return form.Get(name)
}

// failureRedirect picks where a rejected visitor is sent: the form's
// redirect field, else the referring page, else the site root.
func failureRedirect(form url.Values, referer string) string {
	if target := strings.TrimSpace(form.Get("redirect")); target != "" {
		return SafeRedirect(target)
	}
	return SafeRedirect(RefererPath(referer))
}
