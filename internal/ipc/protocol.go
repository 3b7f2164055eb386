package ipc

type Request struct {
	Command string `json:"command"`
}

type Response struct {
	OK      bool   `json:"ok"`
	State   string `json:"state,omitempty"`
	Active  bool   `json:"active,omitempty"`
	Clients int    `json:"clients,omitempty"`
	Addr    string `json:"addr,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
