package devserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vcrobe/adminnav/avatar"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func uploadFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, avatar.Result{Success: false, Message: msg})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(s.cfg.Avatar.CSRFHeader) != s.csrf {
		uploadFailure(w, http.StatusForbidden, "CSRF verification failed.")
		return
	}

	// Leave room for the multipart envelope around the file.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Avatar.MaxBytes+1<<20)
	if err := r.ParseMultipartForm(s.cfg.Avatar.MaxBytes); err != nil {
		uploadFailure(w, http.StatusBadRequest, "The image is too large. The maximum size is 5MB.")
		return
	}

	file, header, err := r.FormFile(s.cfg.Avatar.Field)
	if err != nil {
		uploadFailure(w, http.StatusBadRequest, "No image was received.")
		return
	}
	defer file.Close()

	if header.Size > s.cfg.Avatar.MaxBytes {
		uploadFailure(w, http.StatusBadRequest, "The image is too large. The maximum size is 5MB.")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		uploadFailure(w, http.StatusBadRequest, "The file must be a valid image.")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.logger.Error("reading upload", zap.Error(err))
		uploadFailure(w, http.StatusInternalServerError, "Could not read the image.")
		return
	}

	name := fmt.Sprintf("%d%s", time.Now().UnixNano(), path.Ext(header.Filename))
	url := "/media/avatars/" + name

	s.mu.Lock()
	s.avatars[name] = storedAvatar{contentType: contentType, data: data}
	s.current = url
	s.mu.Unlock()

	s.logger.Info("avatar stored", zap.String("name", name), zap.Int("bytes", len(data)))
	writeJSON(w, http.StatusOK, avatar.Result{Success: true, AvatarURL: url, Message: "Profile picture updated."})
}

func (s *Server) handleAvatar(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	a, ok := s.avatars[chi.URLParam(r, "name")]
	s.mu.RUnlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", a.contentType)
	_, _ = w.Write(a.data)
}
