package main

import (
	"fmt"
	"io"
	"net/http"
)

func main() {
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if len(body) == 0 {
			body = []byte("{}")
		}
		fmt.Printf("Log: %s %s key=%s params=%s\n", r.Method, r.URL.Path, r.Header.Get("X-Api-Key"), string(body))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		fmt.Fprintf(w, `{"provider":"burrao","path":%q,"echo":%s}`, r.URL.Path, string(body))
	})
	fmt.Println("Provedor fake rodando em http://localhost:8082")
	err := http.ListenAndServe(":8082", nil)
	if err != nil {
		fmt.Printf("Erro ao subir o servidor: %s\n", err)
	}
}
