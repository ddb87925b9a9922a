package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/specsift/specsift/internal/api"
	"github.com/specsift/specsift/internal/keywords"
	"github.com/specsift/specsift/internal/svcctx"
)

// BankResponse is the response for GET /api/bank.
type BankResponse struct {
	Categories []string            `json:"categories"`
	Bank       map[string][]string `json:"bank"`
}

// BankEndpoint handles GET /api/bank.
type BankEndpoint struct{}

var _ api.Endpoint = (*BankEndpoint)(nil)

func (e *BankEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/bank", e.handler
}

func (e *BankEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Get the keyword bank
//	@Description	Return the active keyword bank, including any configured extra categories
//	@Tags			triage
//	@Produce		json
//	@Success		200	{object}	BankResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/bank [get]
func (e *BankEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	bank := svcctx.BankFrom(r.Context())
	if bank == nil {
		bank = keywords.DefaultBank()
	}

	resp := BankResponse{
		Categories: bank.Categories(),
		Bank:       map[string][]string{},
	}
	for category, phrases := range bank {
		resp.Bank[category] = append([]string(nil), phrases...)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *BankEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "bank",
		Short: "Show the active keyword bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp BankResponse
			if err := client.Get(cmd.Context(), "/api/bank", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
