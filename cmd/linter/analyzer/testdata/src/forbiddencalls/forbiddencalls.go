package forbiddencalls

import (
	"log"
	"net/http"
	"os"
	"time"
)

func SomePanicFunction() {
	panic("this is forbidden") // want "panic is forbidden"
}

func SomeLogFatalFunction() {
	log.Fatal("this is forbidden") // want "log.Fatal is forbidden outside main function"
}

func SomeOsExitFunction() {
	os.Exit(1) // want "os.Exit is forbidden outside main function"
}

func MultipleCallsFunction() {
	panic("panic 1")   // want "panic is forbidden"
	log.Fatal("fatal") // want "log.Fatal is forbidden outside main function"
	os.Exit(0)         // want "os.Exit is forbidden outside main function"
}

func DefaultClientCalls() {
	_, _ = http.Get("http://localhost")                 // want "http.Get uses the default client, use a client with a timeout"
	_, _ = http.Post("http://localhost", "", nil)       // want "http.Post uses the default client, use a client with a timeout"
	_, _ = http.DefaultClient.Get("http://localhost")   // want "http.DefaultClient is forbidden, use a client with a timeout"
}

func ClientWithTimeout() {
	client := &http.Client{Timeout: time.Second}
	_, _ = client.Get("http://localhost")
	_, _ = http.NewRequest(http.MethodGet, "http://localhost", nil)
}

type server struct{}

func (server) main() {
	os.Exit(1) // want "os.Exit is forbidden outside main function"
}
