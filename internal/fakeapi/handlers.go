package fakeapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/GoCodeAlone/taskmaster/task"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	var filters task.ListFilters
	if raw := q.Get("status"); raw != "" {
		var st task.Status
		if err := st.UnmarshalText([]byte(raw)); err != nil {
			writeValidation(w, validationIssue{Loc: []string{"query", "status"}, Msg: "Input should be 'pending', 'in_progress' or 'completed'", Type: "enum"})
			return
		}
		filters.Status = st
	}
	if raw := q.Get("priority"); raw != "" {
		var p task.Priority
		if err := p.UnmarshalText([]byte(raw)); err != nil {
			writeValidation(w, validationIssue{Loc: []string{"query", "priority"}, Msg: "Input should be 'low', 'medium' or 'high'", Type: "enum"})
			return
		}
		filters.Priority = p
	}
	page, ok := boundedInt(w, q.Get("page"), "page", 1, 1, 0)
	if !ok {
		return
	}
	limit, ok := boundedInt(w, q.Get("limit"), "limit", defaultLimit, 1, maxLimit)
	if !ok {
		return
	}
	search := strings.ToLower(q.Get("search"))

	s.mu.Lock()
	matched := make([]task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.UserID != userID {
			continue
		}
		if filters.Status != "" && t.Status != filters.Status {
			continue
		}
		if filters.Priority != "" && t.Priority != filters.Priority {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.DescriptionText()), search) {
			continue
		}
		matched = append(matched, t)
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt.Time) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt.Time)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)

	writeJSON(w, http.StatusOK, task.ListResponse{
		Tasks: matched[start:end],
		Total: total,
		Page:  page,
		Pages: (total + limit - 1) / limit,
	})
}

func boundedInt(w http.ResponseWriter, raw, name string, def, lo, hi int) (int, bool) {
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || (hi > 0 && n > hi) {
		writeValidation(w, validationIssue{Loc: []string{"query", name}, Msg: "Input should be a valid integer in range", Type: "int_parsing"})
		return 0, false
	}
	return n, true
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	t, ok := s.owned(w, r, "access")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var body task.Create
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeValidation(w, validationIssue{Loc: []string{"body"}, Msg: err.Error(), Type: "json_invalid"})
		return
	}
	if strings.TrimSpace(body.Title) == "" {
		writeValidation(w, validationIssue{Loc: []string{"body", "title"}, Msg: "String should have at least 1 character", Type: "string_too_short"})
		return
	}
	if body.UserID == 0 {
		writeValidation(w, validationIssue{Loc: []string{"body", "user_id"}, Msg: "Field required", Type: "missing"})
		return
	}
	body = body.WithDefaults()

	s.mu.Lock()
	now := task.Timestamp{Time: s.advance()}
	created := task.Task{
		ID:          s.nextID,
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
		Priority:    body.Priority,
		DueDate:     body.DueDate,
		UserID:      body.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.tasks[created.ID] = created
	s.nextID++
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	current, ok := s.owned(w, r, "update")
	if !ok {
		return
	}
	var patch task.Update
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeValidation(w, validationIssue{Loc: []string{"body"}, Msg: err.Error(), Type: "json_invalid"})
		return
	}
	if patch.IsEmpty() {
		writeDetail(w, http.StatusBadRequest, "No fields to update")
		return
	}

	s.mu.Lock()
	updated := patch.Apply(current)
	updated.UpdatedAt = task.Timestamp{Time: s.advance()}
	s.tasks[updated.ID] = updated
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) updateStatus(w http.ResponseWriter, r *http.Request) {
	current, ok := s.owned(w, r, "update")
	if !ok {
		return
	}
	var body task.StatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.NewStatus == "" {
		writeValidation(w, validationIssue{Loc: []string{"body", "new_status"}, Msg: "Input should be 'pending', 'in_progress' or 'completed'", Type: "enum"})
		return
	}

	s.mu.Lock()
	current.Status = body.NewStatus
	current.UpdatedAt = task.Timestamp{Time: s.advance()}
	s.tasks[current.ID] = current
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, current)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	current, ok := s.owned(w, r, "delete")
	if !ok {
		return
	}
	s.mu.Lock()
	delete(s.tasks, current.ID)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, task.DeleteResult{Success: true, Message: "Task deleted successfully"})
}
