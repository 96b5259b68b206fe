package main

import (
	"errors"
	"hotelmaint/src/lib"
	"hotelmaint/src/middlewares"
	"hotelmaint/src/repository"
	"hotelmaint/src/services"
	"hotelmaint/src/workflow"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindError marks request decoding failures.
type bindError struct{ error }

func (e bindError) Unwrap() error { return e.error }

type apiError struct {
	status int
	code   string
	key    string
	params []string
}

var sentinels = []struct {
	err error
	apiError
}{
	{repository.ErrNotFound, apiError{http.StatusNotFound, "not_found", "not_found", nil}},
	// refused by the store itself; the copy stays generic
	{repository.ErrForbidden, apiError{http.StatusForbidden, "forbidden", "operation_failed", nil}},
	{workflow.ErrNotEditable, apiError{http.StatusForbidden, "forbidden", "forbidden", nil}},
	{repository.ErrConflict, apiError{http.StatusConflict, "conflict", "conflict", nil}},
	{workflow.ErrInvalidTransition, apiError{http.StatusUnprocessableEntity, "invalid_transition", "invalid_transition", nil}},
	{workflow.ErrSolutionRequired, apiError{http.StatusUnprocessableEntity, "solution_required", "solution_required", nil}},
	{workflow.ErrAssigneeRequired, apiError{http.StatusUnprocessableEntity, "assignee_required", "assignee_required", nil}},
	{workflow.ErrInvalidAssignee, apiError{http.StatusUnprocessableEntity, "invalid_assignee", "invalid_assignee", nil}},
	{workflow.ErrScheduleRequired, apiError{http.StatusUnprocessableEntity, "schedule_required", "schedule_required", nil}},
	{services.ErrUnsupportedMedia, apiError{http.StatusUnsupportedMediaType, "unsupported_media", "unsupported_media", nil}},
	{services.ErrMediaTooLarge, apiError{http.StatusRequestEntityTooLarge, "media_too_large", "media_too_large", nil}},
	{services.ErrInvalidReference, apiError{http.StatusBadRequest, "validation", "validation", nil}},
}

func classify(err error) apiError {
	var confirm *workflow.ConfirmationRequired
	if errors.As(err, &confirm) {
		code := "confirm_" + string(confirm.Reason)
		return apiError{http.StatusConflict, code, code, nil}
	}
	var field *workflow.FieldError
	if errors.As(err, &field) {
		return apiError{http.StatusForbidden, "field_not_editable", "field_not_editable", []string{string(field.Field)}}
	}
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.apiError
		}
	}
	var verrs validator.ValidationErrors
	var berr bindError
	if errors.As(err, &verrs) || errors.As(err, &berr) {
		return apiError{http.StatusBadRequest, "validation", "validation", nil}
	}
	return apiError{http.StatusInternalServerError, "operation_failed", "operation_failed", nil}
}

// respondError writes the localized error body and aborts the request.
func respondError(ctx *gin.Context, err error) {
	trans := middlewares.Translator(ctx)
	e := classify(err)
	body := gin.H{"error": lib.T(trans, e.key, e.params...), "code": e.code}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		body["fields"] = lib.TranslateValidation(trans, err)
	}
	var confirm *workflow.ConfirmationRequired
	if errors.As(err, &confirm) {
		body["reason"] = confirm.Reason
	}
	if e.status >= http.StatusInternalServerError {
		log.Printf("Error on %s %s: %s\n", ctx.Request.Method, ctx.FullPath(), err.Error())
	}
	ctx.AbortWithStatusJSON(e.status, body)
}
