package store

import "fmt"

// ActionType — имя семейства операций, например "notes/fetchNotes".
type ActionType string

// Phase — стадия жизненного цикла действия.
type Phase uint8

const (
	// PhaseSync — синхронное действие без запроса к API.
	PhaseSync Phase = iota
	PhasePending
	PhaseFulfilled
	PhaseRejected
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseFulfilled:
		return "fulfilled"
	case PhaseRejected:
		return "rejected"
	default:
		return "sync"
	}
}

// Action — единственный способ изменить состояние.
// Для асинхронных операций RequestID связывает pending с fulfilled/rejected.
type Action struct {
	Type      ActionType
	Phase     Phase
	RequestID uint64
	Payload   any
	Error     string
}

func (a Action) String() string {
	if a.Phase == PhaseSync {
		return string(a.Type)
	}
	return fmt.Sprintf("%s/%s#%d", a.Type, a.Phase, a.RequestID)
}

// Сессия.
const (
	TypeRegister       ActionType = "auth/register"
	TypeLogin          ActionType = "auth/login"
	TypeFetchProfile   ActionType = "auth/fetchProfile"
	TypeFetchUsers     ActionType = "auth/fetchUsers"
	TypeInvite         ActionType = "auth/inviteUser"
	TypeChangePassword ActionType = "auth/changePassword"
	TypeLogout         ActionType = "auth/logout"
	TypeAuthClearError ActionType = "auth/clearError"
	TypeSetCredentials ActionType = "auth/setCredentials"
	TypeLocalLogout    ActionType = "auth/logoutLocal"
	TypeSessionExpired ActionType = "auth/sessionExpired"
)

// Заметки.
const (
	TypeCreateNote        ActionType = "notes/createNote"
	TypeFetchNotes        ActionType = "notes/fetchNotes"
	TypeFetchNote         ActionType = "notes/fetchNoteById"
	TypeUpdateNote        ActionType = "notes/updateNote"
	TypeDeleteNote        ActionType = "notes/deleteNote"
	TypeNotesClearError   ActionType = "notes/clearError"
	TypeSetFilters        ActionType = "notes/setFilters"
	TypeSetPagination     ActionType = "notes/setPagination"
	TypeClearSelectedNote ActionType = "notes/clearSelectedNote"
)

// Подписка.
const (
	TypeFetchPlans             ActionType = "subscription/fetchPlans"
	TypeFetchSubscription      ActionType = "subscription/fetchMySubscription"
	TypeCreateOrder            ActionType = "subscription/createOrder"
	TypeVerifyPayment          ActionType = "subscription/verifyPayment"
	TypeFetchPayments          ActionType = "subscription/fetchPaymentHistory"
	TypeCancelSubscription     ActionType = "subscription/cancelSubscription"
	TypeSubscriptionClearError ActionType = "subscription/clearError"
	TypeClearOrderData         ActionType = "subscription/clearOrderData"
)

// reads — семейства, которые только читают серверное состояние.
// Результат вытесненного чтения отбрасывается; результат мутации применяется всегда.
var reads = map[ActionType]bool{
	TypeFetchProfile:      true,
	TypeFetchUsers:        true,
	TypeFetchNotes:        true,
	TypeFetchNote:         true,
	TypeFetchPlans:        true,
	TypeFetchSubscription: true,
	TypeFetchPayments:     true,
}
