// Interactive terminal client for the chat API. Talks to a running server,
// one session per run.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"presto-copilot-be/internal/dto"
	"presto-copilot-be/internal/pkg/serverutils"

	"github.com/fatih/color"
)

var baseURL = "http://localhost:3000/api"

func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func decodeData[T any](body []byte) (T, error) {
	var env serverutils.BaseResponse[T]
	if err := json.Unmarshal(body, &env); err != nil {
		var zero T
		return zero, err
	}
	if !env.Success {
		var zero T
		return zero, fmt.Errorf("%s", env.Message)
	}
	return env.Data, nil
}

func getData[T any](url string) (T, error) {
	_, body, err := sendRequest("GET", url, nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeData[T](body)
}

func createSession(req dto.CreateSessionRequest) (dto.SessionResponse, error) {
	_, body, err := sendRequest("POST", "/chat/v1/session", req)
	if err != nil {
		return dto.SessionResponse{}, err
	}
	return decodeData[dto.SessionResponse](body)
}

func configureSession(sessionId string, req dto.ConfigureSessionRequest) (dto.SessionResponse, error) {
	_, body, err := sendRequest("PUT", "/chat/v1/session/"+sessionId+"/config", req)
	if err != nil {
		return dto.SessionResponse{}, err
	}
	return decodeData[dto.SessionResponse](body)
}

func printSelection(sess dto.SessionResponse) {
	color.Green("Session %s — store: %s, model: %s", sess.Id, sess.StoreKey, sess.Model)
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  /stores          list the document stores")
	fmt.Println("  /store <key>     switch the session to another store")
	fmt.Println("  /models          list the available models")
	fmt.Println("  /model <name>    switch the session to another model")
	fmt.Println("  /docs            list the documents of the current store")
	fmt.Println("  /history         show the conversation so far")
	fmt.Println("  /clear           discard the conversation and start over")
	fmt.Println("  /quit            exit")
}

func showStores(current string) {
	entries, err := getData[[]dto.StoreCatalogEntry]("/catalog/v1/stores")
	if err != nil {
		color.Red("Could not list stores: %v", err)
		return
	}
	for _, entry := range entries {
		marker := "  "
		if entry.Key == current {
			marker = "* "
		}
		fmt.Printf("%s%s (%s)\n", marker, entry.Key, entry.DisplayName)
	}
}

func showModels(current string) {
	catalog, err := getData[dto.ModelCatalogResponse]("/catalog/v1/models")
	if err != nil {
		color.Red("Could not list models: %v", err)
		return
	}
	for _, model := range catalog.Models {
		marker := "  "
		if model == current {
			marker = "* "
		}
		fmt.Printf("%s%s\n", marker, model)
	}
}

func showDocuments(storeKey string) {
	docs, err := getData[[]dto.DocumentResponse]("/catalog/v1/stores/" + storeKey + "/documents")
	if err != nil {
		color.Red("Could not list documents: %v", err)
		return
	}
	if len(docs) == 0 {
		color.Yellow("The %s store has no documents yet.", storeKey)
		return
	}
	for _, doc := range docs {
		fmt.Printf("  %s (%s, %s bytes)\n", doc.DisplayName, doc.MimeType, doc.SizeBytes)
	}
}

func showHistory(sessionId string) {
	history, err := getData[dto.GetChatHistoryResponse]("/chat/v1/session/" + sessionId + "/history")
	if err != nil {
		color.Red("Could not load history: %v", err)
		return
	}
	if len(history.Pairs) == 0 {
		fmt.Println("No conversation yet.")
		return
	}
	// Older exchanges collapse to their title, like the expanders in a chat
	// UI; only the latest pair is shown in full.
	for _, pair := range history.Pairs {
		if pair.Collapsed {
			fmt.Printf("▸ %s\n", pair.Title)
			continue
		}
		color.Cyan("You: %s", pair.User.Chat)
		fmt.Println(pair.Assistant.Chat)
	}
}

func ask(sessionId, question string) {
	resp, body, err := sendRequest("POST", "/chat/v1/session/"+sessionId+"/send", dto.SendChatRequest{Chat: question})
	if err != nil {
		color.Red("Request failed: %v", err)
		return
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		var throttled dto.ThrottledResponse
		if err := json.Unmarshal(body, &throttled); err == nil && throttled.Data.RetryAfterMs > 0 {
			color.Yellow("Slow down: wait %.1fs before the next question.", float64(throttled.Data.RetryAfterMs)/1000)
		} else {
			color.Yellow("Slow down before the next question.")
		}
		return
	case http.StatusConflict:
		color.Yellow("Still working on the previous question.")
		return
	}

	send, err := decodeData[dto.SendChatResponse](body)
	if err != nil {
		color.Red("Send failed: %v", err)
		return
	}

	switch send.Outcome {
	case dto.ChatOutcomeAnswered:
		fmt.Println(send.Reply.Chat)
	case dto.ChatOutcomeEmpty:
		color.Yellow("(the model returned no answer)")
	default:
		color.Red("%s", send.Reply.Chat)
		color.Yellow("(%s after %d attempts)", send.FailureReason, send.Attempts)
	}
}

func main() {
	if v := os.Getenv("CHAT_API_BASE_URL"); v != "" {
		baseURL = v
	}

	color.Cyan("📄 Presto Copilot — document-grounded chat")

	sess, err := createSession(dto.CreateSessionRequest{})
	if err != nil {
		color.Red("Could not reach the API at %s: %v", baseURL, err)
		os.Exit(1)
	}
	printSelection(sess)
	fmt.Println("Type a question, or /help for commands.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, "/") {
			ask(sess.Id, line)
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "/help":
			printHelp()
		case "/stores":
			showStores(sess.StoreKey)
		case "/models":
			showModels(sess.Model)
		case "/docs":
			showDocuments(sess.StoreKey)
		case "/history":
			showHistory(sess.Id)
		case "/store", "/model":
			if len(fields) < 2 {
				color.Yellow("Usage: %s <value>", fields[0])
				continue
			}
			req := dto.ConfigureSessionRequest{}
			if fields[0] == "/store" {
				req.StoreKey = fields[1]
			} else {
				req.Model = fields[1]
			}
			updated, err := configureSession(sess.Id, req)
			if err != nil {
				color.Red("Switch failed: %v", err)
				continue
			}
			sess = updated
			printSelection(sess)
		case "/clear":
			if _, _, err := sendRequest("DELETE", "/chat/v1/session/"+sess.Id, nil); err != nil {
				color.Red("Delete failed: %v", err)
				continue
			}
			fresh, err := createSession(dto.CreateSessionRequest{StoreKey: sess.StoreKey, Model: sess.Model})
			if err != nil {
				color.Red("Could not start a new session: %v", err)
				os.Exit(1)
			}
			sess = fresh
			color.Green("Conversation cleared.")
		case "/quit", "/exit":
			return
		default:
			color.Yellow("Unknown command %s, try /help", fields[0])
		}
	}
}
