// Package pipeline runs a translation request through validation, the
// translation backend and validation again.
//
// Every outcome, including backend failures and unexpected panics, is
// reported as a TranslationResult. Transports never see an error from
// Translate or TranslateImage.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nadzzz/codeswitch/internal/errors"
	"github.com/nadzzz/codeswitch/internal/language"
	"github.com/nadzzz/codeswitch/internal/logger"
	"github.com/nadzzz/codeswitch/internal/message"
	"github.com/nadzzz/codeswitch/internal/ocr"
	"github.com/nadzzz/codeswitch/internal/translator"
	"github.com/nadzzz/codeswitch/internal/validator"
)

// Result messages shared with transports.
const (
	MsgSameLanguage    = "Source and target languages cannot be the same"
	MsgInvalidLanguage = "Invalid language. Supported languages: java, c"
	MsgSuccess         = "Translation completed successfully"
	MsgNoText          = "No text could be extracted from the image"
	msgOCRDisabled     = "OCR is disabled by configuration"
)

// Pipeline is the orchestration engine. It holds only immutable
// collaborators and is safe for concurrent use.
type Pipeline struct {
	translator translator.Translator
	validators *validator.Set
	ocr        ocr.Extractor // nil if OCR is disabled
	log        *zap.SugaredLogger
}

// New creates a Pipeline. extractor may be nil.
func New(tr translator.Translator, validators *validator.Set, extractor ocr.Extractor, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{
		translator: tr,
		validators: validators,
		ocr:        extractor,
		log:        log.With(logger.FieldComponent, "pipeline"),
	}
}

// Translate processes a text request.
func (p *Pipeline) Translate(ctx context.Context, req message.TranslationRequest) (result *message.TranslationResult) {
	id := uuid.NewString()
	log := p.log.With(logger.FieldRequestID, id)

	defer func() {
		if r := recover(); r != nil {
			log.Errorw("translation panicked", logger.FieldError, r)
			result = failure(id, req, errors.Newf("panic: %v", r),
				fmt.Sprintf("Translation failed: unexpected error: %v", r))
		}
	}()

	return p.translate(ctx, id, log, req)
}

func (p *Pipeline) translate(ctx context.Context, id string, log *zap.SugaredLogger, req message.TranslationRequest) *message.TranslationResult {
	start := time.Now()

	from, errFrom := language.Parse(req.SourceLanguage)
	to, errTo := language.Parse(req.TargetLanguage)
	if errFrom != nil || errTo != nil {
		cause := errFrom
		if cause == nil {
			cause = errTo
		}
		return failure(id, req, errors.Mark(cause, errors.ErrInvalidRequest), MsgInvalidLanguage)
	}
	req.SourceLanguage, req.TargetLanguage = string(from), string(to)
	log = log.With(logger.FieldSourceLanguage, from, logger.FieldTargetLanguage, to)
	log.Infow("translation started", logger.FieldSize, len(req.SourceCode))

	// Step 1: Reject same-language requests before touching any collaborator.
	if from == to {
		res := failure(id, req, kind(MsgSameLanguage, errors.ErrSameLanguage, errors.ErrInvalidRequest), MsgSameLanguage)
		res.TranslatedCode = req.SourceCode
		return res
	}

	// Step 2: Validate the source.
	if req.ValidateSyntax {
		out := p.validators.Validate(ctx, req.SourceCode, from)
		if !out.Valid {
			log.Infow("source syntax invalid", logger.FieldError, out.ErrorMessage)
			msg := "Source code syntax validation failed: " + out.ErrorMessage
			res := failure(id, req, kind(msg, errors.ErrSourceSyntaxInvalid), msg)
			res.SyntaxValidation = &out
			return res
		}
	}

	// Step 3: Translate.
	translated, err := p.translator.Translate(ctx, req.SourceCode, from, to)
	if err != nil {
		log.Warnw("translation failed",
			logger.FieldBackend, p.translator.Name(),
			logger.FieldError, err)
		return failure(id, req, err, "Translation failed: "+err.Error())
	}

	res := &message.TranslationResult{
		RequestID:      id,
		OriginalCode:   req.SourceCode,
		TranslatedCode: translated,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		Success:        true,
		Message:        MsgSuccess,
	}

	// Step 4: Validate the output. An invalid target is reported, not fatal.
	if req.ValidateSyntax {
		out := p.validators.Validate(ctx, translated, to)
		res.SyntaxValidation = &out
		if !out.Valid {
			res.Message = "Translation completed but target code has syntax issues: " + out.ErrorMessage
			res.Cause = kind(res.Message, errors.ErrTargetSyntaxInvalid)
		}
	}

	log.Infow("translation complete",
		logger.FieldBackend, p.translator.Name(),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return res
}

// TranslateImage extracts source code from an image and translates it.
func (p *Pipeline) TranslateImage(ctx context.Context, req message.ImageTranslationRequest) (result *message.TranslationResult) {
	id := uuid.NewString()
	log := p.log.With(logger.FieldRequestID, id)
	textReq := message.TranslationRequest{
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		ValidateSyntax: req.ValidateSyntax,
	}

	defer func() {
		if r := recover(); r != nil {
			log.Errorw("image translation panicked", logger.FieldError, r)
			result = failure(id, textReq, errors.Newf("panic: %v", r),
				fmt.Sprintf("Image translation failed: %v", r))
		}
	}()

	if p.ocr == nil {
		msg := "OCR failed: " + msgOCRDisabled
		return failure(id, textReq, kind(msg, errors.ErrOCRFailure), msg)
	}

	log.Infow("ocr started", logger.FieldSize, len(req.Image))
	extracted := p.ocr.ExtractText(ctx, req.Image, req.ContentType)
	if !extracted.Success {
		log.Warnw("ocr failed", logger.FieldError, extracted.ErrorMessage)
		msg := "OCR failed: " + extracted.ErrorMessage
		return failure(id, textReq, kind(msg, errors.ErrOCRFailure), msg)
	}
	if strings.TrimSpace(extracted.Text) == "" {
		return failure(id, textReq, kind(MsgNoText, errors.ErrEmptyExtractedText), MsgNoText)
	}

	textReq.SourceCode = extracted.Text
	res := p.translate(ctx, id, log, textReq)
	if res.Success {
		res.Message += fmt.Sprintf(" (OCR confidence: %.1f%%)", extracted.Confidence*100)
	}
	return res
}

// Validate checks code in the named language.
func (p *Pipeline) Validate(ctx context.Context, code, lang string) (message.ValidationOutcome, error) {
	l, err := language.Parse(lang)
	if err != nil {
		return message.ValidationOutcome{}, errors.WithHint(err, MsgInvalidLanguage)
	}
	return p.validators.Validate(ctx, code, l), nil
}

// Status reports the backend and OCR state.
func (p *Pipeline) Status(ctx context.Context) message.ServiceStatus {
	st := message.ServiceStatus{
		Backend:          p.translator.Status(),
		BackendAvailable: p.translator.Available(),
		OCR:              msgOCRDisabled,
	}
	if p.ocr != nil {
		st.OCRAvailable = p.ocr.Available(ctx)
		st.OCR = p.ocr.Status(ctx)
	}
	return st
}

// kind builds a cause carrying msg and the given sentinels.
func kind(msg string, sentinels ...error) error {
	err := errors.New(msg)
	for _, s := range sentinels {
		err = errors.Mark(err, s)
	}
	return err
}

func failure(id string, req message.TranslationRequest, cause error, msg string) *message.TranslationResult {
	return &message.TranslationResult{
		Cause:          cause,
		RequestID:      id,
		OriginalCode:   req.SourceCode,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		Success:        false,
		Message:        msg,
	}
}
