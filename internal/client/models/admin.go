package models

type AdminState struct {
	Token   string
	Email   string
	Loading bool
	Error   string
	Success string
}

type PersistedAdmin struct {
	AdminToken string `json:"adminToken"`
	AdminEmail string `json:"adminEmail"`
}

func (s AdminState) Persisted() PersistedAdmin {
	return PersistedAdmin{AdminToken: s.Token, AdminEmail: s.Email}
}
