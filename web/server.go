package web

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

func NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/export", HandlerExport).Methods("POST")
	r.HandleFunc("/json/options", HandlerAjaxOptions).Methods("GET")
	r.HandleFunc("/json/encodings", HandlerAjaxEncodings).Methods("GET")
	r.HandleFunc("/ws/status", HandlerWebsocketStatus)
	return r
}

func StartServer(addr string) error {
	h := handlers.RecoveryHandler()(NewRouter())
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
