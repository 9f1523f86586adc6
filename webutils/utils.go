package webutils

import (
	"bytes"
	"encoding/json"
	"io"
	"io/ioutil"
	"log"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/pkg/errors"
)

// ErrNoFile is returned by ReadFormFile for optional form files
var ErrNoFile = errors.New("no file in form")

// archives are not in the builtin mime table of every system
var contentTypes = map[string]string{
	".zip": "application/zip",
}

// ErrorResponse is body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteFile sends in as attachment, content type follows extension of name
func WriteFile(w http.ResponseWriter, in io.Reader, name string) {
	ext := filepath.Ext(name)
	contentType, ok := contentTypes[ext]
	if !ok {
		contentType = mime.TypeByExtension(ext)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+name+"\"")
	if _, err := io.Copy(w, in); err != nil {
		log.Printf("[web] Error when writing file %q: %v", name, err)
	}
}

func WriteJson(w http.ResponseWriter, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		WriteServerError(w, errors.Wrapf(err, "Failed to marshal"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	write(w, data)
}

// WriteJsonFile sends v as indented <fileName>.json attachment
func WriteJsonFile(w http.ResponseWriter, v interface{}, fileName string) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		WriteServerError(w, errors.Wrapf(err, "Failed to marshal"))
		return
	}
	WriteFile(w, bytes.NewReader(data), fileName+".json")
}

// ReadFormFile returns content and file name of multipart form file.
// Missing file gives ErrNoFile.
func ReadFormFile(r *http.Request, key string) ([]byte, string, error) {
	if r.Method != http.MethodPost {
		return nil, "", errors.Errorf("Invalid http method %q", r.Method)
	}
	f, header, err := r.FormFile(key)
	if err == http.ErrMissingFile {
		return nil, "", errors.Wrapf(ErrNoFile, "Missing %q", key)
	} else if err != nil {
		return nil, "", errors.Wrapf(err, "Failed to get %q file", key)
	}
	defer f.Close()

	data, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, "", errors.Wrapf(err, "Failed to read %q file", key)
	}
	return data, header.Filename, nil
}

func write(w http.ResponseWriter, data []byte) {
	if _, err := w.Write(data); err != nil {
		log.Printf("[web] Error when writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error, code int) {
	data, merr := json.Marshal(&ErrorResponse{Error: err.Error()})
	if merr != nil {
		log.Printf("[web] Error marshaling error '%v': %v", err, merr)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	log.Printf("[web] HERR %d: %v", code, err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	write(w, data)
}

// WriteError answers bad request with {"error": ...}
func WriteError(w http.ResponseWriter, err error) {
	writeError(w, err, http.StatusBadRequest)
}

// WriteServerError answers failures of the service itself with {"error": ...}
func WriteServerError(w http.ResponseWriter, err error) {
	writeError(w, err, http.StatusInternalServerError)
}
