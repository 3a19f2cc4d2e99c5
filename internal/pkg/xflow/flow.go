package xflow

import (
	"context"
	"fmt"

	"github.com/daodao97/xgo/xlog"
)

type NodeType string

const (
	NodeTypeStart    NodeType = "start"
	NodeTypeExecute  NodeType = "execute"
	NodeTypeDecision NodeType = "decision"
	NodeTypeEnd      NodeType = "end"
)

type Node interface {
	GetName() string
	GetType() NodeType
}

type BaseNode struct {
	Name string
	Type NodeType
}

func (b *BaseNode) GetName() string {
	return b.Name
}

func (b *BaseNode) GetType() NodeType {
	return b.Type
}

// NodeResult 节点执行结果
type NodeResult[T any] struct {
	Success bool
	Error   error
	State   *T
}

// ExecuteNode 执行节点: 对状态做一次变换
type ExecuteNode[T any] interface {
	Node
	Execute(ctx context.Context, state *T) (*NodeResult[T], error)
}

// DecisionNode 决策节点: 根据状态选择 true/false 分支
type DecisionNode[T any] interface {
	Node
	Decide(ctx context.Context, state *T) (bool, error)
}

// ConditionalEdge 条件边, Condition 为 nil 表示无条件
type ConditionalEdge struct {
	From      string
	To        string
	Condition *bool
}

// ExecutionRecord 记录执行流程, 用于排查
type ExecutionRecord struct {
	Node    string
	Success bool
	Error   string
}

// Flow 顺序执行的有向工作流, 一次 Execute 从 start 节点走到 end 节点
type Flow[T any] struct {
	nodes          map[string]Node
	edges          map[string][]ConditionalEdge
	startNode      string
	state          *T
	executionTrace []ExecutionRecord
}

func NewFlow[T any](state *T) *Flow[T] {
	return &Flow[T]{
		nodes:          make(map[string]Node),
		edges:          make(map[string][]ConditionalEdge),
		state:          state,
		executionTrace: make([]ExecutionRecord, 0),
	}
}

func (f *Flow[T]) AddNode(node ...Node) *Flow[T] {
	for _, n := range node {
		f.nodes[n.GetName()] = n
		if n.GetType() == NodeTypeStart {
			f.startNode = n.GetName()
		}
	}
	return f
}

// AddEdge 添加无条件边
func (f *Flow[T]) AddEdge(from, to Node) *Flow[T] {
	return f.AddConditionalEdge(from, to, nil)
}

// AddConditionalEdge 添加条件边, 供决策节点按分支走向
func (f *Flow[T]) AddConditionalEdge(from, to Node, condition *bool) *Flow[T] {
	f.edges[from.GetName()] = append(f.edges[from.GetName()], ConditionalEdge{
		From:      from.GetName(),
		To:        to.GetName(),
		Condition: condition,
	})
	return f
}

func (f *Flow[T]) Trace() []ExecutionRecord {
	return f.executionTrace
}

// Cond 构造条件边的条件值
func Cond(b bool) *bool {
	return &b
}

// Execute 从 start 节点顺序执行到 end 节点
// 任一节点失败即终止整个流程并返回该节点的错误
func (f *Flow[T]) Execute(ctx context.Context) error {
	if f.startNode == "" {
		return fmt.Errorf("flow has no start node")
	}

	current := f.startNode
	for {
		node, ok := f.nodes[current]
		if !ok {
			return fmt.Errorf("node %s is not registered", current)
		}

		xlog.DebugC(ctx, "执行节点", xlog.String("node", current), xlog.String("type", string(node.GetType())))

		switch n := node.(type) {
		case DecisionNode[T]:
			decision, err := n.Decide(ctx, f.state)
			if err != nil {
				f.record(current, false, err)
				return err
			}
			f.record(current, true, nil)

			next := f.nextByCondition(current, decision)
			if next == "" {
				return fmt.Errorf("node %s has no edge for branch %v", current, decision)
			}
			current = next
			continue

		case ExecuteNode[T]:
			result, err := n.Execute(ctx, f.state)
			if err != nil {
				f.record(current, false, err)
				return err
			}
			if result != nil && !result.Success {
				f.record(current, false, result.Error)
				return result.Error
			}
			f.record(current, true, nil)

		default:
			f.record(current, true, nil)
		}

		if node.GetType() == NodeTypeEnd {
			return nil
		}

		next := f.nextByCondition(current, true)
		if next == "" {
			// 没有出边即自然结束
			return nil
		}
		current = next
	}
}

// nextByCondition 选择第一条匹配的出边: 无条件边总是匹配
func (f *Flow[T]) nextByCondition(from string, decision bool) string {
	for _, edge := range f.edges[from] {
		if edge.Condition == nil || *edge.Condition == decision {
			return edge.To
		}
	}
	return ""
}

func (f *Flow[T]) record(node string, success bool, err error) {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	f.executionTrace = append(f.executionTrace, ExecutionRecord{
		Node:    node,
		Success: success,
		Error:   errMsg,
	})
}
