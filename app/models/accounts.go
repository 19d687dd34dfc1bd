package models

type NewAccount struct {
	Passphrase string `json:"passphrase,omitempty"`
}

type PublicAccount struct {
	Address string `json:"address"`
}

type AccountList struct {
	Accounts []*PublicAccount `json:"accounts"`
}

type ExportRequest struct {
	Passphrase string `json:"passphrase,omitempty"`
}

type ExportedKey struct {
	Address    string `json:"address"`
	PrivateKey string `json:"private_key"`
}
