package server

import (
	"fmt"
	"net/http"
)

// Demo greeting handlers, one per protection level. They exist to give
// the authorization guards observable behavior end to end.

func greetHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "Hello %s!", r.PathValue("name"))
}

func userHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "Hello User %s!", r.PathValue("name"))
}

func adminHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "Hello Admin %s!", r.PathValue("name"))
}
