package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
)

const maxPhotoSize = 50 * 1024 * 1024 // 50 MB

// allowedImageTypes is the set of MIME types accepted for uploaded photos.
// net/http.DetectContentType identifies both via magic-byte sniffing.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

var errUploadTooLarge = errors.New("image too large")

// readUpload extracts the "image" form file, enforcing the size cap and the
// JPEG/PNG whitelist. On failure it has already written the HTTP error.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	// Allow some headroom for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize+1024*1024)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, errUploadTooLarge.Error(), http.StatusBadRequest)
			return nil, false
		}
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return nil, false
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image file required", http.StatusBadRequest)
		return nil, false
	}
	defer closeWithLog(file, "upload file", s.logger)

	imageData, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusInternalServerError)
		s.logger.Error("read upload failed", "error", err)
		return nil, false
	}
	if len(imageData) > maxPhotoSize {
		http.Error(w, errUploadTooLarge.Error(), http.StatusBadRequest)
		return nil, false
	}

	mimeType, ok := allowedImageMIME(imageData)
	if !ok {
		http.Error(w, "unsupported image format: upload a JPEG or PNG", http.StatusBadRequest)
		return nil, false
	}
	s.logger.Debug("upload accepted", "mime_type", mimeType, "bytes", len(imageData))

	return imageData, true
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
