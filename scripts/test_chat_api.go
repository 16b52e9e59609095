package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
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

	client := &http.Client{} // No timeout, generation can retry for a while
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func decode(body []byte) map[string]interface{} {
	var parsed map[string]interface{}
	json.Unmarshal(body, &parsed)
	return parsed
}

func main() {
	color.Cyan("🚀 Exercising the chat API end to end\n")

	// 1. Health
	color.Yellow("\n1. Health check")
	resp, body, err := sendRequest("GET", "/health/v1", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 2. Store catalog
	color.Yellow("\n2. Store catalog")
	resp, body, err = sendRequest("GET", "/catalog/v1/stores", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 3. Model catalog
	color.Yellow("\n3. Model catalog")
	resp, body, err = sendRequest("GET", "/catalog/v1/models", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 4. Create session on the defaults
	color.Yellow("\n4. Create chat session")
	resp, body, err = sendRequest("POST", "/chat/v1/session", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	parsed := decode(body)
	prettyPrint(parsed)

	sessionId := ""
	if data, ok := parsed["data"].(map[string]interface{}); ok {
		sessionId, _ = data["id"].(string)
	}
	if sessionId == "" {
		color.Red("No session id in response, aborting")
		os.Exit(1)
	}

	// 5. Ask a question
	color.Yellow("\n5. Send a question")
	resp, body, err = sendRequest("POST", "/chat/v1/session/"+sessionId+"/send", map[string]string{
		"chat": "제품 보증 기간은 어떻게 되나요?",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 6. Fire a second question immediately, the throttle should reject it
	color.Yellow("\n6. Immediate follow-up (expect 429)")
	resp, body, err = sendRequest("POST", "/chat/v1/session/"+sessionId+"/send", map[string]string{
		"chat": "too fast",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		color.Green("Status: %s (throttled as expected)", resp.Status)
	} else {
		color.Red("Status: %s (expected 429)", resp.Status)
	}
	prettyPrint(decode(body))

	// 7. Wait out the window and ask again
	color.Yellow("\n7. Retry after the window")
	time.Sleep(2 * time.Second)
	resp, body, err = sendRequest("POST", "/chat/v1/session/"+sessionId+"/send", map[string]string{
		"chat": "설치 파일은 어디서 받을 수 있나요?",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 8. History with collapsed pairs
	color.Yellow("\n8. Chat history")
	resp, body, err = sendRequest("GET", "/chat/v1/session/"+sessionId+"/history", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 9. Switch the session to another store
	color.Yellow("\n9. Switch store")
	resp, body, err = sendRequest("PUT", "/chat/v1/session/"+sessionId+"/config", map[string]string{
		"store_key": "applications",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 10. Documents of the new store
	color.Yellow("\n10. Store documents")
	resp, body, err = sendRequest("GET", "/catalog/v1/stores/applications/documents", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	// 11. Clean up
	color.Yellow("\n11. Delete session")
	resp, body, err = sendRequest("DELETE", "/chat/v1/session/"+sessionId, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(decode(body))

	color.Cyan("\n✅ Done")
}
