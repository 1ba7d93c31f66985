package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"memoria-viva/internal/router"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	rt := router.New(router.Options{AuthVerifier: nil}) // modo dev, repos in-memory
	ts := httptest.NewServer(rt.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_EditorialFlow(t *testing.T) {
	ts := newTestServer(t)

	authorID := "vecino-1"
	readerID := "vecina-2"
	editorID := "editora-1"

	// 1) Autor envía su historia => queda pendiente
	storyID := submitStory(t, ts.URL, authorID, map[string]any{
		"title":       "El muelle viejo",
		"body":        "Cuando era niño el muelle era el centro del pueblo...",
		"category":    "places",
		"author_name": "Don José",
	})

	// 2) Un lector no la ve todavía
	{
		st, _ := doReq(t, ts.URL, "GET", "/stories/"+storyID, readerID, "", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 before publish, got %d", st)
		}
	}

	// 3) Un no-editor no puede publicar
	{
		st, _ := doReq(t, ts.URL, "POST", "/stories/"+storyID+"/publish", readerID, "", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 publish by non-editor, got %d", st)
		}
	}

	// 4) La editora la ve en la cola editorial y la publica
	{
		st, body := doReq(t, ts.URL, "GET", "/editorial/stories", editorID, "editor", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 editorial queue, got %d body=%s", st, string(body))
		}
		if !strings.Contains(string(body), storyID) {
			t.Fatalf("editorial queue should include pending story, body=%s", string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/stories/"+storyID+"/publish", editorID, "editor", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 publish, got %d body=%s", st, string(body))
		}
	}

	// 5) Publicar dos veces => conflicto
	{
		st, _ := doReq(t, ts.URL, "POST", "/stories/"+storyID+"/publish", editorID, "editor", nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 on second publish, got %d", st)
		}
	}

	// 6) Ahora cualquiera la lee, le da like y comenta
	{
		st, body := doReq(t, ts.URL, "GET", "/stories/"+storyID, readerID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get published story, got %d body=%s", st, string(body))
		}
	}
	{
		st, _ := doReq(t, ts.URL, "POST", "/stories/"+storyID+"/like", readerID, "", nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 like, got %d", st)
		}
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/stories/"+storyID+"/comments", readerID, "", map[string]any{
			"body": "¡Qué lindo recuerdo!",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 comment, got %d body=%s", st, string(body))
		}
	}

	// 7) El like aparece en la respuesta
	{
		_, body := doReq(t, ts.URL, "GET", "/stories/"+storyID, readerID, "", nil)
		var resp struct {
			LikeCount int `json:"like_count"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.LikeCount != 1 {
			t.Fatalf("expected like_count=1, got %d body=%s", resp.LikeCount, string(body))
		}
	}

	// 8) El autor ve su historia en /me/stories
	{
		st, body := doReq(t, ts.URL, "GET", "/me/stories", authorID, "", nil)
		if st != http.StatusOK || !strings.Contains(string(body), storyID) {
			t.Fatalf("expected own story in /me/stories, status=%d body=%s", st, string(body))
		}
	}
}

func TestHTTP_Events_RecurringExpansion(t *testing.T) {
	ts := newTestServer(t)

	ownerID := "organizador-1"

	// Feria semanal los lunes de junio 2025, sin el 16
	st, body := doReq(t, ts.URL, "POST", "/events", ownerID, "", map[string]any{
		"title":               "Feria costumbrista",
		"category":            "market",
		"location":            "Plaza de Armas",
		"starts_at":           "2025-06-02T10:00:00Z",
		"ends_at":             "2025-06-02T14:00:00Z",
		"recurring":           true,
		"recurrence_pattern":  "weekly",
		"recurrence_end_date": "2025-06-30",
		"excluded_dates":      []string{"2025-06-16"},
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create event, got %d body=%s", st, string(body))
	}

	// Listado expandido del mes: 4 lunes (el 16 excluido)
	st, body = doReq(t, ts.URL, "GET", "/events?from=2025-06-01T00:00:00Z&to=2025-06-30T23:59:59Z", "", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list instances, got %d body=%s", st, string(body))
	}

	var instances []struct {
		InstanceDate        string `json:"instance_date"`
		IsRecurringInstance bool   `json:"is_recurring_instance"`
	}
	if err := json.Unmarshal(body, &instances); err != nil {
		t.Fatalf("decode instances: %v body=%s", err, string(body))
	}
	if len(instances) != 4 {
		t.Fatalf("expected 4 instances, got %d body=%s", len(instances), string(body))
	}
	for _, in := range instances {
		if in.InstanceDate == "2025-06-16" {
			t.Fatalf("excluded date should not appear: %s", in.InstanceDate)
		}
	}
	if instances[0].IsRecurringInstance {
		t.Errorf("first instance should be the anchor occurrence")
	}
	if !instances[1].IsRecurringInstance {
		t.Errorf("later instances should be marked recurring")
	}

	// Feed ICS
	st, body = doReq(t, ts.URL, "GET", "/events/feed.ics", "", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 ics feed, got %d", st)
	}
	if !strings.Contains(string(body), "BEGIN:VCALENDAR") ||
		!strings.Contains(string(body), "RRULE") {
		t.Fatalf("ics feed missing calendar data: %s", string(body))
	}
}

func TestHTTP_Events_CancelOnlyOwnerOrEditor(t *testing.T) {
	ts := newTestServer(t)

	st, body := doReq(t, ts.URL, "POST", "/events", "organizador-1", "", map[string]any{
		"title":     "Taller de telar",
		"category":  "workshop",
		"starts_at": time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create event, got %d body=%s", st, string(body))
	}
	var ev struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &ev)

	// otro usuario no puede cancelar
	st, _ = doReq(t, ts.URL, "POST", "/events/"+ev.ID+"/cancel", "otro-usuario", "", nil)
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 cancel by stranger, got %d", st)
	}

	// una editora sí
	st, _ = doReq(t, ts.URL, "POST", "/events/"+ev.ID+"/cancel", "editora-1", "editor", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 cancel by editor, got %d", st)
	}
}

func TestHTTP_Polls_VoteAndResults(t *testing.T) {
	ts := newTestServer(t)

	st, body := doReq(t, ts.URL, "POST", "/polls", "editora-1", "editor", map[string]any{
		"question": "¿Qué mejoramos primero?",
		"options":  []string{"La plaza", "El muelle", "La biblioteca"},
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create poll, got %d body=%s", st, string(body))
	}

	var poll struct {
		ID      string `json:"id"`
		Options []struct {
			ID string `json:"id"`
		} `json:"options"`
	}
	_ = json.Unmarshal(body, &poll)
	if poll.ID == "" || len(poll.Options) != 3 {
		t.Fatalf("unexpected poll response: %s", string(body))
	}

	// dos vecinos votan; uno cambia su voto
	vote := func(userID, optionID string, want int) {
		t.Helper()
		st, body := doReq(t, ts.URL, "POST", "/polls/"+poll.ID+"/vote", userID, "", map[string]any{
			"option_id": optionID,
		})
		if st != want {
			t.Fatalf("vote: expected %d, got %d body=%s", want, st, string(body))
		}
	}
	vote("vecino-1", poll.Options[0].ID, http.StatusNoContent)
	vote("vecina-2", poll.Options[1].ID, http.StatusNoContent)
	vote("vecino-1", poll.Options[1].ID, http.StatusNoContent) // cambia de opinión

	st, body = doReq(t, ts.URL, "GET", "/polls/"+poll.ID+"/results", "", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 results, got %d", st)
	}
	var results struct {
		Votes map[string]int `json:"votes"`
	}
	_ = json.Unmarshal(body, &results)
	if results.Votes[poll.Options[0].ID] != 0 || results.Votes[poll.Options[1].ID] != 2 {
		t.Fatalf("unexpected results after re-vote: %v", results.Votes)
	}

	// cerrar y verificar que no se puede seguir votando
	st, _ = doReq(t, ts.URL, "POST", "/polls/"+poll.ID+"/close", "editora-1", "editor", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 close poll, got %d", st)
	}
	vote("vecina-3", poll.Options[2].ID, http.StatusConflict)
}

func TestHTTP_Photos_FeatureRequiresEditor(t *testing.T) {
	ts := newTestServer(t)

	st, body := doReq(t, ts.URL, "POST", "/photos", "vecino-1", "", map[string]any{
		"caption":   "Procesión de San Pedro, años 60",
		"era":       "1960s",
		"image_url": "https://storage.example.org/fotos/san-pedro.jpg",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 submit photo, got %d body=%s", st, string(body))
	}
	var photo struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &photo)

	st, _ = doReq(t, ts.URL, "POST", "/photos/"+photo.ID+"/feature", "vecino-1", "", nil)
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 feature by non-editor, got %d", st)
	}

	st, body = doReq(t, ts.URL, "POST", "/photos/"+photo.ID+"/feature", "editora-1", "editor", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 feature by editor, got %d body=%s", st, string(body))
	}

	// solo destacadas
	st, body = doReq(t, ts.URL, "GET", "/photos?featured=true", "", "", nil)
	if st != http.StatusOK || !strings.Contains(string(body), photo.ID) {
		t.Fatalf("expected featured photo in listing, status=%d body=%s", st, string(body))
	}
}

func TestHTTP_Digest_SubscribeAndSendWithoutSender(t *testing.T) {
	ts := newTestServer(t)

	st, _ := doReq(t, ts.URL, "POST", "/digest/subscribe", "", "", map[string]any{
		"email": "vecina@example.org",
	})
	if st != http.StatusNoContent {
		t.Fatalf("expected 204 subscribe, got %d", st)
	}

	st, _ = doReq(t, ts.URL, "POST", "/digest/subscribe", "", "", map[string]any{
		"email": "sin-arroba",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 bad email, got %d", st)
	}

	// sin sender configurado el envío manual avisa 503
	st, _ = doReq(t, ts.URL, "POST", "/digest/send", "editora-1", "editor", nil)
	if st != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 send without sender, got %d", st)
	}
}

func TestHTTP_Health(t *testing.T) {
	ts := newTestServer(t)

	res, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 health, got %d", res.StatusCode)
	}
}

func submitStory(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/stories", userID, "", payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 submit story, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("submit story: missing id body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID, debugRole string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}
	if debugRole != "" {
		req.Header.Set("X-Debug-User-Role", debugRole)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
