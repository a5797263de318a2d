// Command chatclient is a terminal chat client for the jobmatch server.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/korylprince/jobmatch-server/chatstream"
	"github.com/urfave/cli/v2"
)

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	SessionKey string `json:"session_key"`
}

func main() {
	app := &cli.App{
		Name:  "chatclient",
		Usage: "Chat with the JobMatch career assistant",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "server", Value: "http://localhost:8080", Usage: "server URL (http/https)"},
			&cli.StringFlag{Name: "email", Required: true, Usage: "user email for authentication"},
			&cli.StringFlag{Name: "password", Required: true, Usage: "user password for authentication", EnvVars: []string{"JOBMATCH_PASSWORD"}},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	server := strings.TrimSuffix(c.String("server"), "/")

	sessionKey, err := authenticate(c.Context, server, c.String("email"), c.String("password"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Authentication failed: %v", err), 1)
	}
	fmt.Println("Authentication successful!")

	sess := chatstream.NewSession(server+"/api/1.0/chat", sessionKey, http.DefaultClient, nil)
	return loop(c.Context, sess, os.Stdin, os.Stdout)
}

//loop reads lines from in and sends them until exit, quit or EOF, printing the assistant's reply as it streams
func loop(ctx context.Context, sess *chatstream.Session, in io.Reader, out io.Writer) error {
	var printed string
	sess.OnUpdate = func(m chatstream.Message) {
		if m.Role != chatstream.RoleAssistant {
			return
		}
		if strings.HasPrefix(m.Content, printed) {
			fmt.Fprint(out, m.Content[len(printed):])
		} else {
			fmt.Fprint(out, "\n"+m.Content)
		}
		printed = m.Content
	}

	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(out, "\nYou: ")
		input, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("could not read input: %w", err)
		}

		text := strings.TrimSpace(input)
		switch strings.ToLower(text) {
		case "exit", "quit":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		case "":
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return nil
			}
			continue
		}

		fmt.Fprint(out, "Assistant: ")
		printed = ""
		//failures are already recorded in the conversation and printed by OnUpdate
		sess.Send(ctx, text)
		fmt.Fprintln(out)

		if err == io.EOF {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}
	}
}

func authenticate(ctx context.Context, serverURL, email, password string) (string, error) {
	body, err := json.Marshal(authRequest{Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serverURL+"/api/1.0/auth", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var authResp authResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return authResp.SessionKey, nil
}
