package web

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"screening-bot/internal/intake"
	"screening-bot/internal/interviewer"
	"screening-bot/internal/record"
)

var (
	errSessionNotFound = errors.New("session not found")
	errBadRequest      = errors.New("bad request")
)

type turnRequest struct {
	Message string `json:"message"`
}

type turnResponse struct {
	SessionID string `json:"session_id"`
	interviewer.Result
}

type sessionView struct {
	SessionID  string        `json:"session_id"`
	Status     intake.Status `json:"status"`
	Progress   float64       `json:"progress"`
	Field      string        `json:"field,omitempty"`
	Transcript []intake.Turn `json:"transcript"`
}

func (s *Server) index(c *fiber.Ctx) error {
	page, err := static.ReadFile("static/index.html")
	if err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(page)
}

func (s *Server) startSession(c *fiber.Ctx) error {
	sess, resp := s.svc.Start(surface)
	s.sessions.put(sess)
	s.metrics.SetActiveSessions(surface, s.sessions.count())

	return c.Status(fiber.StatusCreated).JSON(turnResponse{
		SessionID: sess.ID,
		Result:    interviewer.Result{Response: resp},
	})
}

func (s *Server) postTurn(c *fiber.Ctx) error {
	var req turnRequest
	if err := c.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", errBadRequest)
	}

	id := c.Params("id")
	var result interviewer.Result
	found := s.sessions.with(id, func(sess intake.Session) intake.Session {
		next, res := s.svc.Handle(c.UserContext(), sess, req.Message)
		result = res
		return next
	})
	if !found {
		return errSessionNotFound
	}

	return c.JSON(turnResponse{SessionID: id, Result: result})
}

func (s *Server) getSession(c *fiber.Ctx) error {
	sess, ok := s.sessions.get(c.Params("id"))
	if !ok {
		return errSessionNotFound
	}

	view := sessionView{
		SessionID:  sess.ID,
		Status:     sess.Status,
		Progress:   sess.Progress(),
		Transcript: sess.Transcript,
	}
	if fields := s.svc.Engine().Fields(); !sess.Done() && sess.FieldIndex < len(fields) {
		view.Field = fields[sess.FieldIndex].Name
	}
	return c.JSON(view)
}

func (s *Server) listRecords(c *fiber.Ctx) error {
	summaries, err := s.svc.Store().List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"records": summaries})
}

func (s *Server) getRecord(c *fiber.Ctx) error {
	rec, err := s.svc.Store().Load(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	format := c.Query("format", record.FormatJSON)
	data, err := record.Export(rec, format)
	if err != nil {
		return err
	}

	if format == record.FormatText {
		c.Type("txt", "utf-8")
	} else {
		c.Type("json", "utf-8")
	}
	return c.Send(data)
}

func (s *Server) deleteRecord(c *fiber.Ctx) error {
	if err := s.svc.Store().Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
