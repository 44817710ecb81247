package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	profilesPrefix = "/profiles/"
	analysisSuffix = "/analysis"
)

// ProfileHandler handles profile lookup analyses.
type ProfileHandler struct {
	deps Dependencies
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(deps Dependencies) *ProfileHandler {
	return &ProfileHandler{deps: deps}
}

// HandleProfileAnalysis handles GET /profiles/{profile}/analysis?limit=N.
// The profile segment may be a Steam ID, a vanity name or an escaped profile URL.
func (h *ProfileHandler) HandleProfileAnalysis(w http.ResponseWriter, r *http.Request) {
	const op = "api.profile_analysis"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	profile, err := profileFromPath(r.URL.EscapedPath())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, fmt.Errorf("invalid limit %q", v)))
			return
		}
		limit = n
	}

	a, err := h.deps.AnalyzeProfile(r.Context(), profile, limit)
	if err != nil {
		status, code := classify(err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// profileFromPath extracts and unescapes the profile segment.
func profileFromPath(escaped string) (string, error) {
	rest := strings.TrimPrefix(escaped, profilesPrefix)
	seg, ok := strings.CutSuffix(rest, analysisSuffix)
	if !ok || seg == "" || strings.Contains(seg, "/") {
		return "", fmt.Errorf("expected %s{profile}%s", profilesPrefix, analysisSuffix)
	}
	profile, err := url.PathUnescape(seg)
	if err != nil {
		return "", fmt.Errorf("profile segment: %w", err)
	}
	if strings.TrimSpace(profile) == "" {
		return "", errors.New("empty profile")
	}
	return profile, nil
}
