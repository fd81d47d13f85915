package utils

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/flaco/hooked/internal/config"
	"github.com/flaco/hooked/internal/dto"
	"github.com/flaco/hooked/internal/hdl"
	"github.com/flaco/hooked/internal/repo/s3"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

var validate = validator.New()

type Response struct {
	Data any `json:"data"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func SuccessResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(&Response{Data: data}); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

func StatusResponse(w http.ResponseWriter, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
}

func ErrResponse(w http.ResponseWriter, statusCode int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err = json.NewEncoder(w).Encode(&ErrorResponse{Error: err.Error()}); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

// KindResponse is ErrResponse with a machine-readable error kind so
// clients can branch without matching message text.
func KindResponse(w http.ResponseWriter, statusCode int, kind string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err = json.NewEncoder(w).Encode(&ErrorResponse{Error: err.Error(), Kind: kind}); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

// ParseAndValidate decodes the JSON body into req and applies its validate
// tags, writing the 400 itself on failure.
func ParseAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrResponse(w, http.StatusBadRequest, hdl.ErrDecodeRequest)
		return false
	}

	if err := validate.Struct(req); err != nil {
		ErrResponse(w, http.StatusBadRequest, err)
		return false
	}

	return true
}

func ParseDeviceByRequest(ctx context.Context) (dto.DeviceRequest, bool) {
	ip, ipOK := ctx.Value(config.IpKey).(string)
	ua, uaOK := ctx.Value(config.UaKey).(string)
	if !ipOK || !uaOK {
		return dto.DeviceRequest{}, false
	}

	return dto.DeviceRequest{IP: ip, UA: ua}, true
}

func ParsePaginationValues(r *http.Request) (int, int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = config.DefaultPage
	}

	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil || size < 1 || size > config.DefaultSize {
		size = config.DefaultSize
	}

	return page, size
}

func ParseFiltersByURL(r *http.Request) map[string]any {
	filters := make(map[string]any)
	for _, key := range []string{"is_active", "is_locked"} {
		if v := r.URL.Query().Get(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				filters[key] = b
			}
		}
	}

	return filters
}

// ParseFileField reads an optional multipart file field into req. A missing
// field is not an error: the request simply carries no file.
func ParseFileField(r *http.Request, field string, req *s3.UploadFileRequest) error {
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil
		}
		return hdl.ErrDecodeRequest
	}
	defer func() {
		if err := file.Close(); err != nil {
			zap.L().Error("failed to close file", zap.Error(err))
		}
	}()

	if header.Size > config.MaxMemory {
		return hdl.ErrFileTooLarge
	}

	bytes, err := io.ReadAll(file)
	if err != nil {
		return hdl.ErrInternal
	}

	req.Name = header.Filename
	req.Bytes = bytes
	req.ContentType = header.Header.Get("Content-Type")
	return nil
}
