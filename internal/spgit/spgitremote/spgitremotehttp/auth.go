// Copyright 2021-2025 The spgit Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package spgitremotehttp

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/browser"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// authorizeTimeout bounds the wait for the browser redirect before falling
// back to a manual prompt.
const authorizeTimeout = 3 * time.Minute

// Authorize obtains an API token for the catalog host.
//
// It starts a loopback callback server, opens the host's authorization page
// in the browser, and waits for the redirect to deliver the token. If the
// browser cannot be opened or the redirect never arrives, it falls back to
// prompting on the terminal (without echo when stdin is a terminal).
func Authorize(
	ctx context.Context,
	logger *zap.Logger,
	stdin io.Reader,
	stderr io.Writer,
	authorizeURL string,
) (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer func() {
		_ = listener.Close()
	}()
	tokenC := make(chan string, 1)
	router := chi.NewRouter()
	router.Get("/callback", func(responseWriter http.ResponseWriter, request *http.Request) {
		token := request.URL.Query().Get("token")
		if token == "" {
			http.Error(responseWriter, "missing token", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(responseWriter, "Authorized. You can close this tab and return to spgit.")
		select {
		case tokenC <- token:
		default:
		}
	})
	server := &http.Server{Handler: router}
	go func() {
		_ = server.Serve(listener)
	}()
	defer func() {
		_ = server.Close()
	}()

	redirectURI := fmt.Sprintf("http://%s/callback", listener.Addr().String())
	fullURL := authorizeURL
	if strings.Contains(fullURL, "?") {
		fullURL += "&redirect_uri=" + url.QueryEscape(redirectURI)
	} else {
		fullURL += "?redirect_uri=" + url.QueryEscape(redirectURI)
	}
	if err := browser.OpenURL(fullURL); err != nil {
		logger.Debug("could not open browser", zap.Error(err))
		fmt.Fprintf(stderr, "Open this URL to authorize spgit:\n\n  %s\n\n", fullURL)
	}

	timer := time.NewTimer(authorizeTimeout)
	defer timer.Stop()
	select {
	case token := <-tokenC:
		return token, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return promptToken(stdin, stderr)
	}
}

func promptToken(stdin io.Reader, stderr io.Writer) (string, error) {
	fmt.Fprint(stderr, "Paste API token: ")
	if file, ok := stdin.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		data, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	}
	data, err := io.ReadAll(io.LimitReader(stdin, 4096))
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("no token provided")
	}
	return token, nil
}
