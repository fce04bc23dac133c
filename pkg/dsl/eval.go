package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/basketrec/core"
	"github.com/rushteam/basketrec/mining"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("rule", cel.DynType),
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Program 是编译好的布尔表达式，使用 CEL (Common Expression Language) 语法。
// 编译一次，可被多个 goroutine 并发求值。
//
// 规则表达式（MatchRule）可访问：
//   - rule.antecedents / rule.consequents（list<string>）
//   - rule.support / rule.confidence / rule.lift / rule.leverage / rule.conviction
//
// 物品表达式（MatchItem）可访问：
//   - item.id / item.score / item.labels
//   - label.<key>（等价于 item.labels[key].value）
//   - rctx.query / rctx.item / rctx.top_n / rctx.sort_by
//
// 示例：
//   - `rule.lift > 1.0 && rule.confidence >= 0.5`
//   - `"fries" in rule.consequents`
//   - `label.recall_source == "association" && item.score > 0.6`
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式；表达式必须返回布尔值。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeConfiguration, "dsl: compile "+expr, issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, core.Errorf(core.ModuleConfig, core.ErrorCodeConfiguration, "dsl: expression must return bool, got %v", ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// String 返回原始表达式
func (p *Program) String() string { return p.expr }

// MatchRule 对规则求值
func (p *Program) MatchRule(r mining.Rule) (bool, error) {
	return p.eval(map[string]any{
		"rule":  ruleInput(r),
		"item":  map[string]any{},
		"label": map[string]any{},
		"rctx":  map[string]any{},
	})
}

// MatchItem 对推荐结果中的物品求值
func (p *Program) MatchItem(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	labels := make(map[string]any, len(item.Labels))
	labelAccessor := make(map[string]any, len(item.Labels))
	for k, v := range item.Labels {
		labels[k] = map[string]any{
			"value":  v.Value,
			"source": v.Source,
		}
		labelAccessor[k] = v.Value
	}

	rc := map[string]any{}
	if rctx != nil {
		rc = map[string]any{
			"query":   rctx.Query,
			"item":    rctx.Item,
			"top_n":   rctx.TopN,
			"sort_by": rctx.SortBy,
		}
	}

	return p.eval(map[string]any{
		"rule": map[string]any{},
		"item": map[string]any{
			"id":     item.ID,
			"score":  item.Score,
			"labels": labels,
		},
		"label": labelAccessor,
		"rctx":  rc,
	})
}

func (p *Program) eval(input map[string]any) (bool, error) {
	out, _, err := p.prg.Eval(input)
	if err != nil {
		// 访问不存在的 key 会报错，调用方应使用 has() 或 != null 检查
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

func ruleInput(r mining.Rule) map[string]any {
	return map[string]any{
		"antecedents": r.Antecedents,
		"consequents": r.Consequents,
		"support":     r.Support,
		"confidence":  r.Confidence,
		"lift":        r.Lift,
		"leverage":    r.Leverage,
		"conviction":  r.Conviction,
	}
}

// FilterRules 返回满足表达式的规则（保持原顺序）。
func FilterRules(p *Program, rules []mining.Rule) ([]mining.Rule, error) {
	if p == nil {
		return rules, nil
	}
	out := make([]mining.Rule, 0, len(rules))
	for _, r := range rules {
		ok, err := p.MatchRule(r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}
