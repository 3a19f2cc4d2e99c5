package xflow

// StartNode 流程入口, 不做任何事
type StartNode struct {
	BaseNode
}

func NewStartNode(name string) *StartNode {
	return &StartNode{
		BaseNode: BaseNode{
			Name: name,
			Type: NodeTypeStart,
		},
	}
}

// EndNode 流程出口, 不做任何事
type EndNode struct {
	BaseNode
}

func NewEndNode(name string) *EndNode {
	return &EndNode{
		BaseNode: BaseNode{
			Name: name,
			Type: NodeTypeEnd,
		},
	}
}
