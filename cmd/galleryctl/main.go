// Command galleryctl drives a running server from the terminal: it creates a
// character, requests images for it and follows the live gallery feed.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"character-image-generator/backend/internal/models"
	pkgws "character-image-generator/backend/pkg/ws"

	"github.com/gorilla/websocket"
)

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func main() {
	baseURL := flag.String("url", "http://localhost:8000", "Server base URL")
	token := flag.String("token", os.Getenv("GALLERY_TOKEN"), "Bearer token for write routes")
	name := flag.String("name", "", "Create a character with this name")
	description := flag.String("description", "", "Description of the character to create")
	style := flag.String("style", "", "Art style of the character to create")
	generate := flag.String("generate", "", `Generate images for this character id ("new" for the one created by -name)`)
	count := flag.Int("count", 1, "Number of images to generate")
	listen := flag.Bool("listen", false, "Follow gallery events over WebSocket")
	filter := flag.String("character", "", "Only follow events of this character id")
	flag.Parse()

	if *name == "" && *generate == "" && !*listen {
		fmt.Println("Gallery Tools Usage:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	c := &client{
		baseURL: strings.TrimRight(*baseURL, "/"),
		token:   *token,
		http:    &http.Client{Timeout: 5 * time.Minute},
	}

	characterID := *generate
	if *name != "" {
		var created models.Character
		req := models.CreateCharacterRequest{
			Name:        *name,
			Description: *description,
			Attributes:  &models.Attributes{Style: *style},
		}
		if err := c.do(http.MethodPost, "/api/characters", req, http.StatusCreated, &created); err != nil {
			log.Fatalf("Error creating character: %v", err)
		}
		fmt.Printf("Character created: %s\n", created.ID)
		fmt.Printf("Prompt: %s\n", created.Prompt)
		if characterID == "new" {
			characterID = created.ID
		}
	}

	if characterID != "" {
		var images []models.GeneratedImage
		path := "/api/images/generate/" + url.PathEscape(characterID)
		if err := c.do(http.MethodPost, path, models.GenerateImagesRequest{Count: count}, http.StatusCreated, &images); err != nil {
			log.Fatalf("Error generating images: %v", err)
		}
		for _, img := range images {
			fmt.Printf("%s  v%d  %-11s %s\n", img.ID, img.Version, img.Source, img.ImageURL)
		}
	}

	if *listen {
		if err := c.listen(*filter); err != nil {
			log.Fatalf("Listener stopped: %v", err)
		}
	}
}

func (c *client) do(method, path string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("error response: %s, status: %d", string(bodyBytes), resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}

func (c *client) listen(characterID string) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}
	u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
	u.Path = "/ws/gallery"
	if characterID != "" {
		u.RawQuery = url.Values{"characterId": {characterID}}.Encode()
	}

	log.Println("Connecting to WebSocket...")
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("error connecting to WebSocket: %w", err)
	}
	defer conn.Close()
	log.Println("Connected, press Ctrl+C to exit")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan error, 1)
	go func() {
		for {
			var event pkgws.Event
			if err := conn.ReadJSON(&event); err != nil {
				done <- err
				return
			}
			payload, _ := json.Marshal(event.Payload)
			fmt.Printf("%s  %-18s %s %s\n", event.Timestamp.Format(time.TimeOnly), event.Type, event.CharacterID, payload)
		}
	}()

	select {
	case err := <-done:
		return err
	case <-interrupt:
		log.Println("Interrupt received, shutting down...")
		err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
		return err
	}
}
