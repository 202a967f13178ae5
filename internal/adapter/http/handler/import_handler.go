package handler

import (
	"io"
	"mime"
	"net/http"

	"github.com/iho/cashledger/internal/adapter/http/dto"
)

// maxImportBytes bounds an import upload.
const maxImportBytes = 10 << 20

// ImportHandler handles bulk imports.
type ImportHandler struct {
	imports ImportService
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(imports ImportService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

// Import accepts either {"fileData": "..."} as JSON or the raw text as the
// request body.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := readImportBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	txs, err := h.imports.Import(r.Context(), data)
	if err != nil {
		writeDomainError(w, "import failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ImportResponse{
		Imported:     len(txs),
		Transactions: dto.TransactionsFromDomain(txs),
	})
}

func readImportBody(w http.ResponseWriter, r *http.Request) (string, error) {
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req dto.ImportRequest
		if err := decodeJSONFrom(body, &req); err != nil {
			return "", err
		}
		return req.FileData, nil
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
