package tui

const (
	scopeTransactions = "tab:transactions"
	scopeAccounts     = "tab:accounts"
	scopeTags         = "tab:tags"
	scopeCharts       = "tab:charts"
	scopeAnyTab       = "tab:*"

	scopeForm    = "screen:form"
	scopeConfirm = "screen:confirm"
	scopeFilter  = "screen:filter"
	scopeLogin   = "screen:login"
	scopePicker  = "screen:picker"
	scopePrompt  = "screen:prompt"
)

// Actions.
const (
	actQuit        = "quit"
	actLogout      = "logout"
	actRefresh     = "refresh"
	actNew         = "new"
	actEdit        = "edit"
	actDelete      = "delete"
	actUp          = "row-up"
	actDown        = "row-down"
	actPagePrev    = "page-prev"
	actPageNext    = "page-next"
	actFilter      = "filter"
	actClearFilter = "clear-filter"
	actSaveFilter  = "save-filter"
	actLoadFilter  = "load-filter"
	actPreset      = "chart-preset"
	actRange       = "chart-range"
	actAccount     = "chart-account"
	actTag         = "chart-tag"
	actView        = "chart-view"
	actReset       = "chart-reset"
)

func DefaultKeyBindings() []KeyBinding {
	tabs := []string{scopeAnyTab}
	lists := []string{scopeTransactions, scopeAccounts, scopeTags}
	return []KeyBinding{
		{Keys: []string{"1"}, Action: "switch-tab-1", Description: "operazioni", Scopes: tabs},
		{Keys: []string{"2"}, Action: "switch-tab-2", Description: "conti", Scopes: tabs},
		{Keys: []string{"3"}, Action: "switch-tab-3", Description: "tag", Scopes: tabs},
		{Keys: []string{"4"}, Action: "switch-tab-4", Description: "grafici", Scopes: tabs},
		{Keys: []string{"j", "down"}, Action: actDown, Description: "giù", Scopes: lists},
		{Keys: []string{"k", "up"}, Action: actUp, Description: "su", Scopes: lists},
		{Keys: []string{"n"}, Action: actNew, Description: "nuovo", Scopes: lists},
		{Keys: []string{"e", "enter"}, Action: actEdit, Description: "modifica", Scopes: lists},
		{Keys: []string{"d"}, Action: actDelete, Description: "elimina", Scopes: lists},
		{Keys: []string{"h", "left"}, Action: actPagePrev, Description: "pag. prec.", Scopes: []string{scopeTransactions}},
		{Keys: []string{"l", "right"}, Action: actPageNext, Description: "pag. succ.", Scopes: []string{scopeTransactions}},
		{Keys: []string{"f"}, Action: actFilter, Description: "filtri", Scopes: []string{scopeTransactions}},
		{Keys: []string{"x"}, Action: actClearFilter, Description: "azzera filtri", Scopes: []string{scopeTransactions}},
		{Keys: []string{"s"}, Action: actSaveFilter, Description: "salva filtro", Scopes: []string{scopeTransactions}},
		{Keys: []string{"o"}, Action: actLoadFilter, Description: "filtri salvati", Scopes: []string{scopeTransactions}},
		{Keys: []string{"p"}, Action: actPreset, Description: "periodo", Scopes: []string{scopeCharts}},
		{Keys: []string{"c"}, Action: actRange, Description: "intervallo", Scopes: []string{scopeCharts}},
		{Keys: []string{"a"}, Action: actAccount, Description: "conto", Scopes: []string{scopeCharts}},
		{Keys: []string{"t"}, Action: actTag, Description: "tag", Scopes: []string{scopeCharts}},
		{Keys: []string{"v"}, Action: actView, Description: "grafico", Scopes: []string{scopeCharts}},
		{Keys: []string{"x"}, Action: actReset, Description: "reimposta", Scopes: []string{scopeCharts}},
		{Keys: []string{"r"}, Action: actRefresh, Description: "aggiorna", Scopes: tabs},
		{Keys: []string{"L"}, Action: actLogout, Description: "esci dall'account", Scopes: tabs},
		{Keys: []string{"q"}, Action: actQuit, Description: "esci", Scopes: tabs},
		{Keys: []string{"tab"}, Action: "next-field", Description: "campo succ.", Scopes: []string{scopeForm, scopeFilter, scopeLogin}},
		{Keys: []string{"ctrl+s"}, Action: "submit", Description: "salva", Scopes: []string{scopeForm}},
		{Keys: []string{"enter"}, Action: "submit", Description: "conferma", Scopes: []string{scopeFilter, scopeLogin, scopePrompt, scopePicker}},
		{Keys: []string{"ctrl+r"}, Action: "toggle-register", Description: "accedi/registrati", Scopes: []string{scopeLogin}},
		{Keys: []string{"y"}, Action: "confirm", Description: "conferma", Scopes: []string{scopeConfirm}},
		{Keys: []string{"n", "esc"}, Action: "cancel", Description: "annulla", Scopes: []string{scopeConfirm}},
		{Keys: []string{"ctrl+d"}, Action: "delete-saved", Description: "elimina", Scopes: []string{scopePicker}},
		{Keys: []string{"esc"}, Action: "close", Description: "chiudi", Scopes: []string{scopeForm, scopeFilter, scopePicker, scopePrompt}},
	}
}
