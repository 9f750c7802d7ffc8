// applications.go - Job-application ("candidature") submission and listing.
//
// Submission is multipart: form fields plus a single required "cv" file part
// streamed straight into the content store. The owning account always comes
// from the verified token claims, never from the client body.
package server

import (
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// cvFieldName is the multipart field carrying the CV file.
const cvFieldName = "cv"

// maxFieldBytes caps form value parts (telephone, poste, motivation).
// The CV file itself has no size limit.
const maxFieldBytes = 1 << 20

// CandidatureOwner is the owning account expanded inline on listings.
type CandidatureOwner struct {
	ID    string `json:"_id"`
	Nom   string `json:"nom"`
	Email string `json:"email"`
}

// Candidature is the wire representation of an application record.
type Candidature struct {
	ID         string           `json:"_id"`
	UserID     CandidatureOwner `json:"userId"`
	Telephone  string           `json:"telephone"`
	Poste      string           `json:"poste"`
	Motivation string           `json:"motivation"`
	CvPath     string           `json:"cvPath"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// CandidaturesHandler routes /api/candidatures by method behind the auth gate.
func (cfg Config) CandidaturesHandler() http.Handler {
	return cfg.Auth.requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			cfg.submitCandidature(w, r)
		case http.MethodGet:
			cfg.listCandidatures(w, r)
		default:
			respondMessage(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}))
}

// submitCandidature reads the multipart payload, stores the CV and persists
// one candidature row. A missing cv part fails before anything is written.
func (cfg Config) submitCandidature(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "missing token")
		return
	}

	mr, err := r.MultipartReader()
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "multipart body required")
		return
	}

	// Form fields are read leniently: absent or empty values persist as
	// empty strings. Only the file part is a hard requirement.
	fields := map[string]string{}
	var cvPath string

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			respondMessage(w, http.StatusBadRequest, "malformed multipart body")
			return
		}

		if part.FileName() == "" {
			// Value part (telephone, poste, motivation). Oversized values
			// are rejected outright rather than silently truncated.
			v, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
			_ = part.Close()
			if err != nil {
				respondMessage(w, http.StatusBadRequest, "malformed multipart body")
				return
			}
			if len(v) > maxFieldBytes {
				respondMessage(w, http.StatusBadRequest, "form field too large")
				return
			}
			fields[part.FormName()] = strings.TrimSpace(string(v))
			continue
		}

		if part.FormName() != cvFieldName || cvPath != "" {
			_ = part.Close()
			continue
		}

		path, err := cfg.Store.Save(r.Context(), cvFieldName, part.FileName(), part.Header.Get("Content-Type"), part)
		_ = part.Close()
		if err != nil {
			rid := RequestIDFromContext(r.Context())
			Error("cv store failed", map[string]any{"rid": rid}, err)
			respondMessage(w, http.StatusInternalServerError, "server error")
			return
		}
		cvPath = path
	}

	if cvPath == "" {
		respondMessage(w, http.StatusBadRequest, "cv file is missing")
		return
	}
	Debug("cv stored", map[string]any{"path": cvPath})

	id := uuid.New()
	now := time.Now().UTC()
	_, err = cfg.DB.Exec(`
		INSERT INTO candidatures (id, user_id, telephone, poste, motivation, cv_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`, id, claims.UserID, fields["telephone"], fields["poste"], fields["motivation"], cvPath, now)
	if err != nil {
		// The stored CV is orphaned here; accepted, not cleaned up.
		Error("candidature insert failed", map[string]any{"cv_path": cvPath}, err)
		Warn("stored cv orphaned", map[string]any{"cv_path": cvPath})
		respondMessage(w, http.StatusInternalServerError, "server error")
		return
	}

	log.Printf("candidature: created %s owner=%s", id, claims.UserID)

	respondMessage(w, http.StatusCreated, "application submitted")
}

// listCandidatures returns every application with the owning account's nom
// and email expanded inline. Visible to any authenticated caller.
func (cfg Config) listCandidatures(w http.ResponseWriter, r *http.Request) {
	rows, err := cfg.DB.QueryContext(r.Context(), `
		SELECT c.id, c.telephone, c.poste, c.motivation, c.cv_path, c.created_at, c.updated_at,
		       u.id, u.nom, u.email
		FROM candidatures c
		JOIN users u ON u.id = c.user_id
	`)
	if err != nil {
		Error("candidature list query failed", nil, err)
		respondMessage(w, http.StatusInternalServerError, "server error")
		return
	}
	defer func() { _ = rows.Close() }()

	list := make([]Candidature, 0)
	for rows.Next() {
		var c Candidature
		if err := rows.Scan(
			&c.ID, &c.Telephone, &c.Poste, &c.Motivation, &c.CvPath, &c.CreatedAt, &c.UpdatedAt,
			&c.UserID.ID, &c.UserID.Nom, &c.UserID.Email,
		); err != nil {
			Error("candidature list scan failed", nil, err)
			respondMessage(w, http.StatusInternalServerError, "server error")
			return
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		Error("candidature list rows failed", nil, err)
		respondMessage(w, http.StatusInternalServerError, "server error")
		return
	}

	respondJSON(w, http.StatusOK, list)
}
