package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/dayplan/backend/api/transport"
	"github.com/dayplan/backend/domain"
	"github.com/dayplan/backend/pkg/httpcontext"
	"github.com/dayplan/backend/pkg/titledate"
	taskUC "github.com/dayplan/backend/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Unscheduled bucket
// @Tags tasks
// @Router /api/v1/tasks/unscheduled [get]
func (h *TaskHandler) GetUnscheduled(ctx *fasthttp.RequestCtx) {
	identity := h.identity(ctx)
	if identity == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.Unscheduled(stdCtx, identity)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Today and overdue bucket
// @Tags tasks
// @Router /api/v1/tasks/today [get]
func (h *TaskHandler) GetTodayAndOverdue(ctx *fasthttp.RequestCtx) {
	identity := h.identity(ctx)
	if identity == "" {
		return
	}
	endOfDay, ok := h.boundaryParam(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.TodayAndOverdue(stdCtx, identity, endOfDay)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Upcoming bucket
// @Tags tasks
// @Router /api/v1/tasks/upcoming [get]
func (h *TaskHandler) GetUpcoming(ctx *fasthttp.RequestCtx) {
	identity := h.identity(ctx)
	if identity == "" {
		return
	}
	endOfDay, ok := h.boundaryParam(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.Upcoming(stdCtx, identity, endOfDay)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Completed bucket
// @Tags tasks
// @Router /api/v1/tasks/completed [get]
func (h *TaskHandler) GetCompleted(ctx *fasthttp.RequestCtx) {
	identity := h.identity(ctx)
	if identity == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	limit := parseInt(string(ctx.QueryArgs().Peek("limit")), 100)
	tasks, err := h.uc.Completed(stdCtx, identity, limit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Stream pre-bucketed snapshots
// @Tags tasks
// @Router /api/v1/tasks/watch [get]
func (h *TaskHandler) Watch(ctx *fasthttp.RequestCtx) {
	identity := h.identity(ctx)
	if identity == "" {
		return
	}
	endOfDay, ok := h.boundaryParam(ctx)
	if !ok {
		return
	}
	limit := parseInt(string(ctx.QueryArgs().Peek("limit")), 100)

	ctx.Response.Header.SetContentType("text/event-stream")
	ctx.Response.Header.Set("Cache-Control", "no-cache")
	ctx.Response.Header.Set("Connection", "keep-alive")

	logger := h.logger
	uc := h.uc
	ctx.SetBodyStreamWriter(func(w *bufio.Writer) {
		streamCtx, cancel := context.WithCancel(context.Background())
		defer cancel()

		snapshots, stop, err := uc.Watch(streamCtx, identity, taskUC.WatchParams{
			EndOfLocalDay:  endOfDay,
			CompletedLimit: limit,
		})
		if err != nil {
			logger.Error("watch subscription failed", zap.Error(err))
			return
		}
		defer stop()

		for snap := range snapshots {
			payload, err := json.Marshal(snap)
			if err != nil {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				// consumer went away; unsubscribing stops further pushes
				return
			}
		}
	})
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) Create(ctx *fasthttp.RequestCtx) {
	identity := h.identity(ctx)
	if identity == "" {
		return
	}
	in, ok := h.parseInput(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Add(stdCtx, identity, in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Preview title extraction
// @Tags tasks
// @Router /api/v1/tasks/parse [post]
func (h *TaskHandler) Parse(ctx *fasthttp.RequestCtx) {
	identity := h.identity(ctx)
	if identity == "" {
		return
	}

	var req transport.ParseRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload"))
		return
	}
	ref := time.Now()
	if req.Reference != "" {
		parsed, err := time.Parse(time.RFC3339, req.Reference)
		if err != nil {
			h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "reference must be RFC3339"))
			return
		}
		ref = parsed
	}

	h.respondSuccess(ctx, http.StatusOK, titledate.Extract(req.Text, ref))
}

// @Summary Update task
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) Update(ctx *fasthttp.RequestCtx) {
	identity := h.identity(ctx)
	if identity == "" {
		return
	}
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}
	in, ok := h.parseInput(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Update(stdCtx, identity, id, in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Complete task
// @Tags tasks
// @Router /api/v1/tasks/{id}/complete [post]
func (h *TaskHandler) Complete(ctx *fasthttp.RequestCtx) {
	h.toggle(ctx, true)
}

// @Summary Reopen task
// @Tags tasks
// @Router /api/v1/tasks/{id}/uncomplete [post]
func (h *TaskHandler) Uncomplete(ctx *fasthttp.RequestCtx) {
	h.toggle(ctx, false)
}

func (h *TaskHandler) toggle(ctx *fasthttp.RequestCtx, completed bool) {
	identity := h.identity(ctx)
	if identity == "" {
		return
	}
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var err error
	if completed {
		err = h.uc.Complete(stdCtx, identity, id)
	} else {
		err = h.uc.Uncomplete(stdCtx, identity, id)
	}
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Reschedule task to today
// @Tags tasks
// @Router /api/v1/tasks/{id}/today [post]
func (h *TaskHandler) MoveToToday(ctx *fasthttp.RequestCtx) {
	identity := h.identity(ctx)
	if identity == "" {
		return
	}
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	var req transport.MoveToTodayRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload"))
		return
	}
	startOfDay, err := time.Parse(time.RFC3339, req.StartOfLocalDay)
	if err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "start_of_local_day must be RFC3339"))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.MoveToToday(stdCtx, identity, id, startOfDay); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) Delete(ctx *fasthttp.RequestCtx) {
	identity := h.identity(ctx)
	if identity == "" {
		return
	}
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, identity, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

func (h *TaskHandler) parseInput(ctx *fasthttp.RequestCtx) (taskUC.Input, bool) {
	var req transport.TaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload"))
		return taskUC.Input{}, false
	}

	in := taskUC.Input{
		Title:       req.Title,
		Description: req.Description,
		HasDueTime:  req.HasDueTime,
		Priority:    req.Priority,
	}
	if req.DueDate != "" {
		due, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "due_date must be RFC3339"))
			return taskUC.Input{}, false
		}
		in.DueDate = &due
	}
	if req.Reference != "" {
		ref, err := time.Parse(time.RFC3339, req.Reference)
		if err != nil {
			h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "reference must be RFC3339"))
			return taskUC.Input{}, false
		}
		in.Reference = ref
	}
	return in, true
}

func (h *TaskHandler) taskID(ctx *fasthttp.RequestCtx) (string, bool) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id"))
		return "", false
	}
	return id, true
}

// boundaryParam reads and validates the client-computed end of local day.
func (h *TaskHandler) boundaryParam(ctx *fasthttp.RequestCtx) (time.Time, bool) {
	raw := string(ctx.QueryArgs().Peek("end_of_day"))
	if raw == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "end_of_day is required"))
		return time.Time{}, false
	}
	boundary, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "end_of_day must be RFC3339"))
		return time.Time{}, false
	}
	return boundary, true
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
