package response

import (
	"encoding/json"
	"net/http"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, APIResponse{Status: "success", Data: data})
}

// Message responds with a success envelope carrying both a message and data.
func Message(w http.ResponseWriter, status int, msg string, data interface{}) {
	write(w, status, APIResponse{Status: "success", Message: msg, Data: data})
}

func Error(w http.ResponseWriter, status int, msg string) {
	write(w, status, APIResponse{Status: "error", Message: msg})
}

// ErrorWithData is Error plus a payload, e.g. the hash of a reverted transaction.
func ErrorWithData(w http.ResponseWriter, status int, msg string, data interface{}) {
	write(w, status, APIResponse{Status: "error", Message: msg, Data: data})
}

func write(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
