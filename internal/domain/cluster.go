package domain

// ClusterHealth is one row of _cat/health.
type ClusterHealth struct {
	Epoch               string `json:"epoch"`
	Timestamp           string `json:"timestamp"`
	Cluster             string `json:"cluster"`
	Status              string `json:"status"`
	NodeTotal           string `json:"node.total"`
	NodeData            string `json:"node.data"`
	Shards              string `json:"shards"`
	Primaries           string `json:"pri"`
	Relocating          string `json:"relo"`
	Initializing        string `json:"init"`
	Unassigned          string `json:"unassign"`
	ActiveShardsPercent string `json:"active_shards_percent"`
}

// NodeInfo is one row of _cat/nodes.
type NodeInfo struct {
	IP          string `json:"ip"`
	HeapPercent string `json:"heap.percent"`
	RAMPercent  string `json:"ram.percent"`
	CPU         string `json:"cpu"`
	Load1m      string `json:"load_1m"`
	NodeRole    string `json:"node.role"`
	Master      string `json:"master"`
	Name        string `json:"name"`
}

// IsMaster reports whether the node is the elected master.
func (n NodeInfo) IsMaster() bool {
	return n.Master == "*"
}

// ClusterInfo is the response of GET /.
type ClusterInfo struct {
	Name        string `json:"name"`
	ClusterName string `json:"cluster_name"`
	ClusterUUID string `json:"cluster_uuid"`
	Version     struct {
		Number        string `json:"number"`
		LuceneVersion string `json:"lucene_version"`
	} `json:"version"`
	Tagline string `json:"tagline"`
}

// ClusterHealthStatus is the response of _cluster/health.
type ClusterHealthStatus struct {
	ClusterName         string  `json:"cluster_name"`
	Status              string  `json:"status"`
	TimedOut            bool    `json:"timed_out"`
	NumberOfNodes       int     `json:"number_of_nodes"`
	NumberOfDataNodes   int     `json:"number_of_data_nodes"`
	ActiveShards        int     `json:"active_shards"`
	UnassignedShards    int     `json:"unassigned_shards"`
	ActiveShardsPercent float64 `json:"active_shards_percent_as_number"`
}
