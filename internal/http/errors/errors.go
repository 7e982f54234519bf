// Package errors centralizes HTTP error responses: details go to the log
// with the request ID, clients get a generic message.
package errors

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

func InternalError(w http.ResponseWriter, r *http.Request, err error, message string) {
	requestLog(r).WithError(err).Error(message)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func BadRequestError(w http.ResponseWriter, r *http.Request, err error, clientMessage string) {
	requestLog(r).WithError(err).Warn("bad request")
	http.Error(w, clientMessage, http.StatusBadRequest)
}

func LogError(r *http.Request, message string, err error) {
	requestLog(r).WithError(err).Error(message)
}

func requestLog(r *http.Request) *logrus.Entry {
	entry := logrus.NewEntry(logrus.StandardLogger())
	if requestID := middleware.GetReqID(r.Context()); requestID != "" {
		entry = entry.WithField("request_id", requestID)
	}
	return entry
}
