package api

import (
	"net/http"
	"time"

	"infinite-experiment/clanhall/internal/common"
	"infinite-experiment/clanhall/internal/models/dtos"
	"infinite-experiment/clanhall/internal/services"
)

// ResolveApproval handles POST /api/v1/approvals/resolve
//
// @Summary      Resolve an approval button
// @Description  Applies the action carried by a signed token from an invite or disband notification. Each token works once.
// @Tags         Approvals
// @Accept       json
// @Produce      json
// @Param        input  body  dtos.ResolveApprovalReq  true  "Action token"
// @Success      200  {object}  dtos.APIResponse
// @Failure      400  {object}  dtos.APIResponse
// @Failure      403  {object}  dtos.APIResponse
// @Router       /api/v1/approvals/resolve [post]
func (h *Handlers) ResolveApproval() http.HandlerFunc {
	return withActor(func(w http.ResponseWriter, r *http.Request, initTime time.Time, actor services.Actor) {
		var req dtos.ResolveApprovalReq
		if err := decodeRequest(r, &req); err != nil {
			respondBadRequest(w, initTime, err)
			return
		}

		res, err := h.deps.Services.Approvals.Resolve(r.Context(), req.Token, actor)
		if err != nil {
			respondServiceError(w, r, initTime, err)
			return
		}

		if res.Disband != nil {
			common.RespondSuccess(w, initTime, "Clan disbanded", disbandResp(res.Disband))
			return
		}
		common.RespondSuccess(w, initTime, "Action "+string(res.Action)+" applied", res)
	})
}

func disbandResp(res *services.DisbandResult) dtos.DisbandResp {
	return dtos.DisbandResp{
		ClanID:     res.Clan.ID,
		ClanName:   res.Clan.Name,
		ClanTag:    res.Clan.Tag,
		UsersReset: res.UsersReset,
	}
}
