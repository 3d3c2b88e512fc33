package tenants

// Registry lists every tenant the supervisor (C12) starts an MCP host for.
// Adding a tenant means adding one Spec here and a BuildFunc above — no
// other part of the process needs to know tenant names.
func Registry() []Spec {
	return []Spec{
		{
			Name:           "sofia",
			PortEnv:        "MCP_PORT_SOFIA",
			ChannelsEnv:    "CHANNEL_IDS_SOFIA",
			ToolsNamespace: "zena",
			Build:          BuildSofia,
		},
		{
			Name:           "alisa",
			PortEnv:        "MCP_PORT_ALISA",
			ChannelsEnv:    "CHANNEL_IDS_ALISA",
			ToolsNamespace: "zena",
			Build:          BuildAlisa,
		},
	}
}
