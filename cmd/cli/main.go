// Command dormhub is a CLI client for the dormhub service.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
)

// ---- config/token store ----

type tokenFile struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "dormhub")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "dormhub")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tok string) error {
	exp := time.Now().Add(24 * time.Hour)
	// Read the expiry out of the token itself when possible; the server
	// verifies it anyway, so no signature check is needed here.
	if t, _, err := jwt.NewParser().ParseUnverified(tok, &jwt.RegisteredClaims{}); err == nil {
		if claims, ok := t.Claims.(*jwt.RegisteredClaims); ok && claims.ExpiresAt != nil {
			exp = claims.ExpiresAt.Time
		}
	}
	_ = os.MkdirAll(cfgDir(), 0o700)
	b, err := json.MarshalIndent(tokenFile{Token: tok, ExpiresAt: exp}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(tokenPath(), b, 0o600)
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.Token == "" || time.Now().After(tf.ExpiresAt) {
		return "", errors.New("no valid token (login required)")
	}
	return tf.Token, nil
}

// ---- http helpers ----

func postJSON(addr, path string, body any, tok string) (*http.Response, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, addr+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("x-access-token", tok)
	}
	return http.DefaultClient.Do(req)
}

func postCSV(addr, path, file, tok string) (*http.Response, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(file))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, addr+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("x-access-token", tok)
	return http.DefaultClient.Do(req)
}

func getJSON(addr, path, tok string) error {
	req, err := http.NewRequest(http.MethodGet, addr+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("x-access-token", tok)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %s", path, resp.Status)
	}
	_, err = io.Copy(os.Stdout, resp.Body)
	return err
}

func drainResponse(resp *http.Response, err error) error {
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	fmt.Println(strings.TrimSpace(string(body)))
	return nil
}

// ---- commands ----

func cmdRegister(addr, name, password string) error {
	return drainResponse(postJSON(addr, "/register", map[string]string{"name": name, "password": password}, ""))
}

func cmdLogin(addr, name, password string) error {
	resp, err := postJSON(addr, "/login", map[string]string{"name": name, "password": password}, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	var out struct {
		Auth  bool   `json:"auth"`
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK || !out.Auth {
		return fmt.Errorf("login rejected: %s", resp.Status)
	}
	if err := saveToken(out.Token); err != nil {
		return err
	}
	fmt.Println("logged in")
	return nil
}

func cmdUpload(addr, path, file string) error {
	tok, err := loadToken()
	if err != nil {
		return err
	}
	return drainResponse(postCSV(addr, path, file, tok))
}

func cmdList(addr, path string) error {
	tok, err := loadToken()
	if err != nil {
		return err
	}
	return getJSON(addr, path, tok)
}

// cmdWatch subscribes to the push channel and prints updates until interrupted.
func cmdWatch(addr string) error {
	u, err := url.Parse(addr)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		_ = conn.Close()
	}()

	fmt.Println("watching for updates (ctrl-c to stop)")
	for {
		var n struct {
			Event   string `json:"event"`
			Kind    string `json:"kind"`
			Message string `json:"message"`
		}
		if err := conn.ReadJSON(&n); err != nil {
			return nil
		}
		fmt.Printf("[%s] %s\n", n.Kind, n.Message)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: dormhub [flags] <command> [args]

Commands:
  register            create an account (-u, -p)
  login               log in and store the session token (-u, -p)
  upload-groups FILE  upload a groups CSV
  upload-hostels FILE upload a hostels CSV
  groups              list stored groups
  hostels             list stored hostels
  watch               stream live update notifications

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	addr := flag.String("addr", "http://127.0.0.1:5000", "server base URL")
	name := flag.String("u", "", "account name")
	password := flag.String("p", "", "account password")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "register":
		err = cmdRegister(*addr, *name, *password)
	case "login":
		err = cmdLogin(*addr, *name, *password)
	case "upload-groups":
		if len(args) < 2 {
			err = errors.New("upload-groups: missing file argument")
		} else {
			err = cmdUpload(*addr, "/upload-groups", args[1])
		}
	case "upload-hostels":
		if len(args) < 2 {
			err = errors.New("upload-hostels: missing file argument")
		} else {
			err = cmdUpload(*addr, "/upload-hostels", args[1])
		}
	case "groups":
		err = cmdList(*addr, "/groups")
	case "hostels":
		err = cmdList(*addr, "/hostels")
	case "watch":
		err = cmdWatch(*addr)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
