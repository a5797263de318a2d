package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/korylprince/jobmatch-server/api"
	"github.com/korylprince/jobmatch-server/storage"
	"go.uber.org/zap"
)

//uploadOverhead is the room left for multipart headers on top of the file itself
const uploadOverhead = 64 * 1024

//GET /resume
func handleReadResume(w http.ResponseWriter, r *http.Request) *handlerResponse {
	user := r.Context().Value(api.UserKey).(*api.User)

	resume, err := api.ReadResume(r.Context(), user.ID)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}
	if resume == nil {
		return handleError(http.StatusNotFound, errors.New("Could not find resume"))
	}

	return &handlerResponse{Code: http.StatusOK, Body: resume}
}

//PUT /resume
func handleUpdateResume(w http.ResponseWriter, r *http.Request) *handlerResponse {
	var req *ResumeRequest
	d := json.NewDecoder(http.MaxBytesReader(w, r.Body, api.MaxResumeBytes+uploadOverhead))

	err := d.Decode(&req)
	if err != nil || req == nil {
		return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode json: %v", err))
	}

	if req.FileName == "" {
		req.FileName = "resume.txt"
	}

	user := r.Context().Value(api.UserKey).(*api.User)

	resume, err := api.UpsertResume(r.Context(), user.ID, req.FileName, req.Text)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	return &handlerResponse{Code: http.StatusOK, Body: resume}
}

//POST /resume/upload
func handleUploadResume(archive storage.Archive, logger *zap.Logger) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		r.Body = http.MaxBytesReader(w, r.Body, api.MaxResumeBytes+uploadOverhead)
		if err := r.ParseMultipartForm(api.MaxResumeBytes + uploadOverhead); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return handleErrorMessage(http.StatusBadRequest, "File must be under 5MB", err)
			}
			return handleError(http.StatusBadRequest, fmt.Errorf("Could not parse form: %v", err))
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			return handleErrorMessage(http.StatusBadRequest, "No file uploaded", err)
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, api.MaxResumeBytes+1))
		if err != nil {
			return handleError(http.StatusInternalServerError, fmt.Errorf("Could not read file: %v", err))
		}

		mimeType := header.Header.Get("Content-Type")

		text, err := api.ExtractResumeText(header.Filename, mimeType, data)
		if resp := checkAPIError(err); resp != nil {
			return resp
		}

		user := r.Context().Value(api.UserKey).(*api.User)

		//archive failures do not fail the upload
		if key, err := archive.Put(r.Context(), user.ID, header.Filename, mimeType, data); err != nil {
			logger.Warn("could not archive resume", zap.String("user", user.ID), zap.Error(err))
		} else if key != "" {
			logger.Debug("archived resume", zap.String("user", user.ID), zap.String("key", key))
		}

		resume, err := api.UpsertResume(r.Context(), user.ID, header.Filename, text)
		if resp := checkAPIError(err); resp != nil {
			return resp
		}

		return &handlerResponse{Code: http.StatusOK, Body: resume}
	}
}
