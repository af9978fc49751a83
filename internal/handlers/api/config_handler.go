package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/clubhub/internal/middlewares"
	"github.com/khanghh/clubhub/internal/settings"
)

type ConfigHandler struct {
	settingsService SettingsService
}

func (h *ConfigHandler) GetConfig(ctx *fiber.Ctx) error {
	snap, err := h.settingsService.Snapshot(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusOK).JSON(middlewares.NewDataResponse(snap))
}

func (h *ConfigHandler) PostConfig(ctx *fiber.Ctx) error {
	var req createConfigRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	kind, err := settings.ParseKind(req.Type)
	if err != nil {
		return settingsError(err)
	}

	created, err := h.settingsService.Create(ctx.UserContext(), kind, req.Data)
	if err != nil {
		return settingsError(err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(middlewares.NewDataResponse(configMutationResponse{
		Message: fmt.Sprintf("%s created successfully.", kind),
		Created: created,
	}))
}

func (h *ConfigHandler) PatchConfig(ctx *fiber.Ctx) error {
	var req updateConfigRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	kind, err := settings.ParseKind(req.Type)
	if err != nil {
		return settingsError(err)
	}
	id, err := settings.ParseID(req.ID)
	if err != nil {
		return settingsError(err)
	}

	updated, err := h.settingsService.Update(ctx.UserContext(), kind, id, req.Data)
	if errors.Is(err, settings.ErrNoFields) {
		message := fmt.Sprintf("%s: allowed fields are %s", err, strings.Join(settings.AllowedFields(kind), ", "))
		return middlewares.NewAPIError(fiber.StatusBadRequest, "BAD_REQUEST", message)
	}
	if err != nil {
		return settingsError(err)
	}
	return ctx.Status(fiber.StatusOK).JSON(middlewares.NewDataResponse(configMutationResponse{
		Message: fmt.Sprintf("%s with id=%d updated successfully.", kind, id),
		Updated: updated,
	}))
}

func (h *ConfigHandler) DeleteConfig(ctx *fiber.Ctx) error {
	var req deleteConfigRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	kind, err := settings.ParseKind(req.Type)
	if err != nil {
		return settingsError(err)
	}
	id, err := settings.ParseID(req.ID)
	if err != nil {
		return settingsError(err)
	}

	if err := h.settingsService.Delete(ctx.UserContext(), kind, id); err != nil {
		return settingsError(err)
	}
	return ctx.Status(fiber.StatusOK).JSON(middlewares.NewDataResponse(configMutationResponse{
		Message: fmt.Sprintf("%s with id=%d deleted successfully.", kind, id),
	}))
}

func NewConfigHandler(settingsService SettingsService) *ConfigHandler {
	return &ConfigHandler{
		settingsService: settingsService,
	}
}
