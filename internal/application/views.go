package application

import (
	"github.com/example/nazolog/internal/catalog"
	"github.com/example/nazolog/internal/layout"
)

const (
	labelCreate        = "参加記録をつける"
	labelEdit          = "記録を編集する"
	labelUnscoped      = "記録をつける"
	labelClosed        = "この公演は終了しています。"
	labelSubmitCreate  = "記録を保存"
	labelSubmitUpdate  = "記録を更新"
	labelFinishedBadge = "[終了済み]"

	colorCreate   = "#27ae60"
	colorEdit     = "#f39c12"
	colorUnscoped = "#3498db"

	messageEventNotFound  = "指定されたIDを持つ公演は存在しません。"
	messageNoEvents       = "現在開催中、または予定されている公演はありません。"
	messageNoRecords      = "この公演に関する記録はまだありません。"
	messageNoRadar        = "記録がないため、詳細評価グラフは表示できません。"
	catalogPath           = "/"
	backLinkLabel         = "一覧へ戻る"
	titleEventNotFound    = "エラー: 公演が見つかりません"
	titleRecordNotFound   = "エラー: 記録が見つかりません"
	messageRecordNotFound = "指定されたIDを持つ謎解き参加記録は存在しません。"
)

// BackLink points a view back at the catalog.
type BackLink struct {
	Href  string `json:"href"`
	Label string `json:"label"`
}

// NotFoundView is the terminal state for an unknown event or record id.
type NotFoundView struct {
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	ID       string   `json:"id"`
	BackLink BackLink `json:"backLink"`
}

// DetailView is the derived state of one event's detail screen. When Found is
// false only NotFound is populated.
type DetailView struct {
	Found         bool               `json:"found"`
	NotFound      *NotFoundView      `json:"notFound,omitempty"`
	Event         *catalog.Event     `json:"event,omitempty"`
	KeyVisual     *catalog.KeyVisual `json:"keyVisual,omitempty"`
	RecordCount   int                `json:"records"`
	CurrentRecord *Record            `json:"currentRecord"`
	Radar         []int              `json:"radar"`
	Action        *Action            `json:"action,omitempty"`
	Notices       []string           `json:"notices,omitempty"`
	BackLink      BackLink           `json:"backLink"`
}

// CatalogEntry is one event row of the catalog view.
type CatalogEntry struct {
	catalog.Event
	DetailURL     string `json:"detailUrl"`
	FinishedLabel string `json:"finishedLabel,omitempty"`
	RecordCount   int    `json:"records"`
}

// CatalogView is the derived state of the catalog screen.
type CatalogView struct {
	Events  []CatalogEntry `json:"events"`
	Message string         `json:"message,omitempty"`
	Action  Action         `json:"action"`
	Layout  layout.State   `json:"layout"`
}

// RecordView is the derived state of a single record screen.
type RecordView struct {
	Found    bool           `json:"found"`
	NotFound *NotFoundView  `json:"notFound,omitempty"`
	Record   *Record        `json:"record,omitempty"`
	Event    *catalog.Event `json:"event,omitempty"`
	BackLink BackLink       `json:"backLink"`
}

func catalogBackLink() BackLink {
	return BackLink{Href: catalogPath, Label: backLinkLabel}
}

func eventNotFound(eventID string) *NotFoundView {
	return &NotFoundView{Title: titleEventNotFound, Message: messageEventNotFound, ID: eventID, BackLink: catalogBackLink()}
}

func recordNotFound(recordID string) *NotFoundView {
	return &NotFoundView{Title: titleRecordNotFound, Message: messageRecordNotFound, ID: recordID, BackLink: catalogBackLink()}
}

func eventDetailURL(eventID string) string {
	return "/events/" + eventID
}

func eventFormURL(eventID string) string {
	return "/events/" + eventID + "/form"
}
