package scenario

import (
	"context"
	"time"
)

func init() {
	register(clusterScenario)
}

func clusterScenario() Scenario {
	return Scenario{
		Name:        "cluster",
		Description: "cluster health, nodes and version",
		Steps: []Step{
			{Name: "health is not red", Run: checkHealth},
			{Name: "nodes include a master", Run: checkNodes},
			{Name: "info reports a version", Run: checkInfo},
			{Name: "wait for yellow", Run: waitForYellow},
		},
	}
}

func checkHealth(ctx context.Context, env *Env) error {
	rows, err := env.Client.CatHealth(ctx)
	if err != nil {
		return err
	}
	if err = expectTrue(len(rows) > 0, "cat health returned no rows"); err != nil {
		return err
	}
	env.Notef("cluster %s is %s with %s node(s)", rows[0].Cluster, rows[0].Status, rows[0].NodeTotal)
	return expectTrue(rows[0].Status != "red", "cluster status is red")
}

func checkNodes(ctx context.Context, env *Env) error {
	nodes, err := env.Client.CatNodes(ctx)
	if err != nil {
		return err
	}
	masters := 0
	for _, n := range nodes {
		if n.IsMaster() {
			masters++
		}
	}
	env.Notef("%d node(s)", len(nodes))
	if err = expectTrue(len(nodes) > 0, "cat nodes returned no rows"); err != nil {
		return err
	}
	return expectEqual("elected masters", 1, masters)
}

func checkInfo(ctx context.Context, env *Env) error {
	info, err := env.Client.Info(ctx)
	if err != nil {
		return err
	}
	env.Notef("version %s", info.Version.Number)
	return expectTrue(info.Version.Number != "", "info has no version number")
}

func waitForYellow(ctx context.Context, env *Env) error {
	health, err := env.Client.WaitForHealth(ctx, "yellow", 10*time.Second)
	if err != nil {
		return err
	}
	return expectTrue(!health.TimedOut, "cluster did not reach yellow, status %s", health.Status)
}
