package web

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/mogaika/ogre_xml_exporter/config"
	"github.com/mogaika/ogre_xml_exporter/exporter"
	"github.com/mogaika/ogre_xml_exporter/scene"
	"github.com/mogaika/ogre_xml_exporter/status"
	"github.com/mogaika/ogre_xml_exporter/webutils"
)

const maxUploadSize = 64 << 20

// exports share random name state, run them one by one
var exportLock sync.Mutex

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// readOptions decodes optional options file by its extension, defaults
// are used without file
func readOptions(r *http.Request) (config.ExportOptions, error) {
	data, name, err := webutils.ReadFormFile(r, "options")
	if errors.Is(err, webutils.ErrNoFile) {
		return config.DefaultOptions(), nil
	} else if err != nil {
		return config.DefaultOptions(), err
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		opts := config.DefaultOptions()
		if err := json.Unmarshal(data, &opts); err != nil {
			return opts, errors.Wrapf(err, "Failed to unmarshal options")
		}
		return opts, opts.Normalize()
	case ".toml":
		return config.DecodeOptions(data, "toml")
	default:
		return config.DecodeOptions(data, "yaml")
	}
}

// jobID lets the client pick the export id beforehand, so it can follow
// /ws/status?job=<id> while the export runs
func jobID(r *http.Request) (string, error) {
	q := r.URL.Query().Get("job")
	if q == "" {
		return uuid.New().String(), nil
	}
	id, err := uuid.Parse(q)
	if err != nil {
		return "", errors.Wrapf(err, "Invalid job id %q", q)
	}
	return id.String(), nil
}

// addExportLog stores records of export as export.log next to exported files
func addExportLog(sink exporter.Sink, exportLog *status.Logger) error {
	lw, err := sink.Create("export.log")
	if err != nil {
		return errors.Wrap(err, "Cannot add export log")
	}
	if _, err := exportLog.WriteTo(lw); err != nil {
		lw.Close()
		return errors.Wrap(err, "Cannot write export log")
	}
	return errors.Wrap(lw.Close(), "Cannot close export log")
}

// HandlerExport converts uploaded scene and answers with zip of output files
// and export log
func HandlerExport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		webutils.WriteError(w, errors.Wrapf(err, "Failed to parse form"))
		return
	}
	sceneData, _, err := webutils.ReadFormFile(r, "scene")
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	sc, err := scene.Decode(bytes.NewReader(sceneData))
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	opts, err := readOptions(r)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	job, err := jobID(r)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	// zip output can not be converted
	opts.ConverterCommand = ""
	opts.ExportPath = job + ".zip"

	var buf bytes.Buffer
	sink := exporter.NewZipSink(&buf)
	exportLog := status.NewLogger(status.BroadcastListener(job))

	exportLock.Lock()
	result := exporter.NewSession(sc, opts, sink, exportLog).Run()
	exportLock.Unlock()
	log.Printf("[web] Export %s finished with status %s", job, status.StatusName(result))

	if err := addExportLog(sink, exportLog); err != nil {
		log.Printf("[web] Export %s: %v", job, err)
	}
	if err := sink.Close(); err != nil {
		webutils.WriteServerError(w, errors.Wrapf(err, "Failed to finish archive"))
		return
	}
	webutils.WriteFile(w, &buf, job+".zip")
}

func HandlerAjaxOptions(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("download") != "" {
		webutils.WriteJsonFile(w, config.DefaultOptions(), "options")
	} else {
		webutils.WriteJson(w, config.DefaultOptions())
	}
}

func HandlerAjaxEncodings(w http.ResponseWriter, r *http.Request) {
	webutils.WriteJson(w, config.ListEncodings())
}

func HandlerWebsocketStatus(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[web] websocket upgrade error: %v", err)
		return
	}
	status.NewClient(conn, r.URL.Query().Get("job"))
}
