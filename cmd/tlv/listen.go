package main

import (
	"errors"
	"io/fs"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
)

// listen opens a listener for addr. An addr of the form "unix:///path"
// listens on a Unix domain socket, replacing a stale socket file left by
// an earlier run; anything else is a TCP address.
func listen(addr string) (net.Listener, error) {
	path, ok := strings.CutPrefix(addr, "unix://")
	if !ok {
		return net.Listen("tcp", addr)
	}

	if fi, err := os.Lstat(path); err == nil && fi.Mode()&fs.ModeSocket != 0 {
		if err := os.Remove(path); err != nil {
			return nil, err
		}
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return net.Listen("unix", path)
}

// listenAndServe serves handler on addr until the listener fails.
func listenAndServe(addr string, handler http.Handler) error {
	ln, err := listen(addr)
	if err != nil {
		return err
	}
	defer ln.Close()

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.Serve(ln)
}
