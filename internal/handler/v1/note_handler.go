package v1

import (
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain/note"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NoteHandler struct {
	notes *service.NoteService
	log   *zap.Logger
}

func NewNoteHandler(notes *service.NoteService, log *zap.Logger) *NoteHandler {
	return &NoteHandler{notes: notes, log: log}
}

func (h *NoteHandler) List(c *gin.Context) {
	patientID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	notes, err := h.notes.ListNotes(c.Request.Context(), patientID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, notes)
}

type addNoteRequest struct {
	Note     string    `json:"note"`
	NoteType note.Type `json:"note_type"`
}

func (h *NoteHandler) Add(c *gin.Context) {
	patientID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req addNoteRequest
	if !bindJSON(c, &req) {
		return
	}

	v, err := h.notes.AddNote(c.Request.Context(), patientID, req.Note, req.NoteType)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, v)
}

func (h *NoteHandler) Delete(c *gin.Context) {
	noteID, ok := parseUUID(c, "id")
	if !ok || !requireConfirm(c) {
		return
	}
	if err := h.notes.DeleteNote(c.Request.Context(), noteID); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, "note deleted")
}
