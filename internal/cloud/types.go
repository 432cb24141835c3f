package cloud

import "encoding/json"

// envelope is the common response wrapper of the Pintura cloud API.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// Business codes the login endpoint reports inside a 200 response.
const (
	codeUserNotFound      = 37
	codePasswordIncorrect = 38
)

type loginRequest struct {
	Account   string `json:"account"`
	Password  string `json:"password"`
	LoginType int    `json:"loginType"` // 2 = phone number, 3 = email
	AreaCode  string `json:"areaCode,omitempty"`
}

// Group is a screen group the logged-in account owns.
type Group struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ScreenCount int    `json:"screenCount"`
}

type createGroupRequest struct {
	ScreenGroupName string   `json:"screenGroupName"`
	ScreenIDList    []string `json:"screenIdList"`
	Type            int      `json:"type"` // 1 = local group
}

type joinGroupRequest struct {
	ScreenGroupID int64    `json:"screenGroupId"`
	ScreenIDList  []string `json:"screenIdList"`
}
