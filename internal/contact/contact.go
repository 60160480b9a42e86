package contact

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"silosremeco/backend/internal/domain"
	"silosremeco/backend/internal/logger"
	"silosremeco/backend/internal/xid"
)

var (
	ErrInvalidFormToken   = errors.New("invalid or expired form token")
	ErrVerificationFailed = errors.New("captcha verification failed")
	ErrDeliveryFailed     = errors.New("message delivery failed")
)

// fieldMessages maps "<field>.<tag>" to the message shown next to the input.
var fieldMessages = map[string]string{
	"nombre.required":         "El nombre es obligatorio",
	"email.required":          "El e-mail es obligatorio",
	"email.email":             "Debe ser un email válido",
	"telefono.required":       "El teléfono es obligatorio",
	"mensaje.required":        "El mensaje es obligatorio",
	"recaptchaToken.required": "Token de reCAPTCHA ausente o inválido",
	"formToken.required":      "Token de formulario ausente o inválido",
}

type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid contact request: " + strings.Join(names, ", ")
}

type Option func(*Service)

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

type Service struct {
	validate *validator.Validate
	tokens   *TokenIssuer
	verifier Verifier
	mailer   Mailer
	log      logrus.FieldLogger
}

func NewService(tokens *TokenIssuer, verifier Verifier, mailer Mailer, opts ...Option) *Service {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	s := &Service{
		validate: validate,
		tokens:   tokens,
		verifier: verifier,
		mailer:   mailer,
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("component", "contact")
	return s
}

func (s *Service) IssueToken() (domain.ContactTokenResponse, error) {
	return s.tokens.Issue()
}

// Submit validates the request, checks the form token and the captcha, then
// delivers the message. It returns the id assigned to the delivered message.
func (s *Service) Submit(ctx context.Context, req domain.ContactRequest, remoteIP string) (string, error) {
	req = normalize(req)
	if err := s.validateRequest(req); err != nil {
		return "", err
	}

	if err := s.tokens.Verify(req.FormToken); err != nil {
		s.log.WithError(err).Info("contact form token rejected")
		return "", ErrInvalidFormToken
	}

	if err := s.verifier.Verify(ctx, req.RecaptchaToken, remoteIP); err != nil {
		s.log.WithError(err).Warn("contact captcha rejected")
		return "", fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}

	body, err := renderMessage(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	id := xid.New("msg")
	msg := Message{ID: id, Subject: "Nuevo mensaje de contacto desde Silos", HTML: body, ReplyTo: req.Email}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.WithField("message_id", id).WithError(err).Error("contact delivery failed")
		return "", fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	s.log.WithField("message_id", id).Info("contact message delivered")
	return id, nil
}

func (s *Service) validateRequest(req domain.ContactRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make(map[string][]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		name := fe.Field()
		msg, ok := fieldMessages[name+"."+fe.Tag()]
		if !ok {
			msg = "Valor inválido"
		}
		fields[name] = append(fields[name], msg)
	}
	return &ValidationError{Fields: fields}
}

func normalize(req domain.ContactRequest) domain.ContactRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Message = strings.TrimSpace(req.Message)
	req.RecaptchaToken = strings.TrimSpace(req.RecaptchaToken)
	req.FormToken = strings.TrimSpace(req.FormToken)
	return req
}
