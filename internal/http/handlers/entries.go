package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/materials-backend/internal/domain/catalog"
	"github.com/yungbote/materials-backend/internal/http/response"
	"github.com/yungbote/materials-backend/internal/platform/logger"
	"github.com/yungbote/materials-backend/internal/services"
)

// Upload field names of the legacy entry forms.
const (
	fieldAtomicPositionsFile = "fhi_file"
	fieldPhotoluminescence   = "pl_file"
	fieldBandStructureFiles  = "band_structure_files"
	fieldControlIn           = "control_in_file"
	fieldGeometryIn          = "geometry_in_file"
)

type EntryHandler struct {
	log     *logger.Logger
	entries services.EntryService
}

func NewEntryHandler(log *logger.Logger, entries services.EntryService) *EntryHandler {
	return &EntryHandler{
		log:     log.With("handler", "EntryHandler"),
		entries: entries,
	}
}

// readEntryForm resolves the actor and parses the form. It writes the
// response itself when it returns false.
func (h *EntryHandler) readEntryForm(c *gin.Context, fileField string) (services.Actor, map[string][]string, services.EntryInput, bool) {
	actor, err := services.ActorFromContext(c.Request.Context())
	if err != nil {
		response.RespondSubmissionError(c, h.log, err)
		return services.Actor{}, nil, services.EntryInput{}, false
	}
	form, _, err := parseMultipart(c, fileField)
	if err != nil {
		response.RespondFailure(c, services.TextFixErrors)
		return services.Actor{}, nil, services.EntryInput{}, false
	}
	in := services.EntryInput{
		SystemID:          formUUID(form, "system"),
		PublicationID:     formUUID(form, "publication"),
		PhaseID:           formUUID(form, "phase"),
		SynthesisMethodID: optionalFormUUID(form, "synthesis-methods"),
		Temperature:       formValue(form, "temperature"),
	}
	return actor, form, in, true
}

func (h *EntryHandler) respond(c *gin.Context, res *services.EntryResult, err error) {
	if err != nil {
		response.RespondSubmissionError(c, h.log, err)
		return
	}
	response.RespondSuccess(c, res.Text(), res.ID.String())
}

func atomicPositionsInput(c *gin.Context, form map[string][]string, base services.EntryInput) services.AtomicPositionsInput {
	return services.AtomicPositionsInput{
		EntryInput: base,
		A:          formValue(form, "a"),
		B:          formValue(form, "b"),
		C:          formValue(form, "c"),
		Alpha:      formValue(form, "alpha"),
		Beta:       formValue(form, "beta"),
		Gamma:      formValue(form, "gamma"),
		Volume:     formValue(form, "volume"),
		Z:          formValue(form, "Z"),
		File:       singleUpload(c, fieldAtomicPositionsFile),
	}
}

func excitonEmissionInput(c *gin.Context, form map[string][]string, base services.EntryInput) services.ExcitonEmissionInput {
	var files []services.Upload
	if c.Request.MultipartForm != nil {
		files = uploadsFromHeaders(c.Request.MultipartForm.File[fieldPhotoluminescence])
	}
	return services.ExcitonEmissionInput{
		EntryInput: base,
		Peak:       formValue(form, "exciton_emission"),
		Files:      files,
	}
}

func synthesisInput(form map[string][]string, base services.EntryInput) services.SynthesisInput {
	return services.SynthesisInput{
		EntryInput:        base,
		SynthesisMethod:   formValue(form, "synthesis_method"),
		StartingMaterials: formValue(form, "starting_materials"),
		Remarks:           formValue(form, "remarks"),
		Product:           formValue(form, "product"),
	}
}

func bandStructureInput(c *gin.Context, form map[string][]string, base services.EntryInput) services.BandStructureInput {
	var files []services.Upload
	if c.Request.MultipartForm != nil {
		files = uploadsFromHeaders(c.Request.MultipartForm.File[fieldBandStructureFiles])
	}
	return services.BandStructureInput{
		EntryInput: base,
		BandGap:    formValue(form, "band_gap"),
		Files:      files,
		ControlIn:  singleUpload(c, fieldControlIn),
		GeometryIn: singleUpload(c, fieldGeometryIn),
	}
}

func materialPropertyInput(form map[string][]string, base services.EntryInput) services.MaterialPropertyInput {
	return services.MaterialPropertyInput{
		EntryInput: base,
		Property:   formValue(form, "property"),
		Value:      formValue(form, "value"),
	}
}

// POST /api/entries/atomic_positions (multipart)
func (h *EntryHandler) AddAtomicPositions(c *gin.Context) {
	actor, form, base, ok := h.readEntryForm(c, fieldAtomicPositionsFile)
	if !ok {
		return
	}
	res, err := h.entries.AddAtomicPositions(c.Request.Context(), actor, atomicPositionsInput(c, form, base))
	h.respond(c, res, err)
}

// POST /api/entries/exciton_emission (multipart)
func (h *EntryHandler) AddExcitonEmission(c *gin.Context) {
	actor, form, base, ok := h.readEntryForm(c, fieldPhotoluminescence)
	if !ok {
		return
	}
	res, err := h.entries.AddExcitonEmission(c.Request.Context(), actor, excitonEmissionInput(c, form, base))
	h.respond(c, res, err)
}

// POST /api/entries/synthesis
func (h *EntryHandler) AddSynthesis(c *gin.Context) {
	actor, form, base, ok := h.readEntryForm(c, "")
	if !ok {
		return
	}
	res, err := h.entries.AddSynthesis(c.Request.Context(), actor, synthesisInput(form, base))
	h.respond(c, res, err)
}

// POST /api/entries/band_structure (multipart)
func (h *EntryHandler) AddBandStructure(c *gin.Context) {
	actor, form, base, ok := h.readEntryForm(c, fieldBandStructureFiles)
	if !ok {
		return
	}
	res, err := h.entries.AddBandStructure(c.Request.Context(), actor, bandStructureInput(c, form, base))
	h.respond(c, res, err)
}

// POST /api/entries/material_prop
func (h *EntryHandler) AddMaterialProperty(c *gin.Context) {
	actor, form, base, ok := h.readEntryForm(c, "")
	if !ok {
		return
	}
	res, err := h.entries.AddMaterialProperty(c.Request.Context(), actor, materialPropertyInput(form, base))
	h.respond(c, res, err)
}

// PUT /api/entries/:kind/:id
// Takes the same form fields as the matching add route; files are ignored.
func (h *EntryHandler) UpdateEntry(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	kind := catalog.EntryKind(c.Param("kind"))
	if !kind.Valid() {
		response.RespondError(c, http.StatusBadRequest, "invalid_kind", nil)
		return
	}
	actor, form, base, ok := h.readEntryForm(c, "")
	if !ok {
		return
	}
	var upd services.EntryUpdate
	switch kind {
	case catalog.EntryAtomicPositions:
		in := atomicPositionsInput(c, form, base)
		upd.AtomicPositions = &in
	case catalog.EntryExcitonEmission:
		in := excitonEmissionInput(c, form, base)
		upd.ExcitonEmission = &in
	case catalog.EntrySynthesis:
		in := synthesisInput(form, base)
		upd.Synthesis = &in
	case catalog.EntryBandStructure:
		in := bandStructureInput(c, form, base)
		upd.BandStructure = &in
	case catalog.EntryMaterialProperty:
		in := materialPropertyInput(form, base)
		upd.MaterialProperty = &in
	}
	res, err := h.entries.UpdateEntry(c.Request.Context(), actor, kind, id, upd)
	h.respond(c, res, err)
}

// GET /api/systems/:id/entries/:kind
func (h *EntryHandler) ListEntries(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	kind := catalog.EntryKind(c.Param("kind"))
	if !kind.Valid() {
		response.RespondError(c, http.StatusBadRequest, "invalid_kind", nil)
		return
	}
	out, err := h.entries.ListEntries(c.Request.Context(), id, kind)
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/systems/:id/overview?ee=&apos=&syn=&bs=
func (h *EntryHandler) Overview(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	out, err := h.entries.Overview(c.Request.Context(), id, services.OverviewIDs{
		AtomicPositions: queryUUID(c, "apos"),
		Synthesis:       queryUUID(c, "syn"),
		ExcitonEmission: queryUUID(c, "ee"),
		BandStructure:   queryUUID(c, "bs"),
	})
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, out)
}

// DELETE /api/entries/:kind/:id
func (h *EntryHandler) DeleteEntry(c *gin.Context) {
	actor, err := services.ActorFromContext(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	kind := catalog.EntryKind(c.Param("kind"))
	if err := h.entries.DeleteEntry(c.Request.Context(), actor, kind, id); err != nil {
		response.RespondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "id": id, "kind": kind})
}
