package mapper

import (
	"fmt"
	"reflect"
)

// ==================== 声明式字段映射 ====================

// Coercion 类型转换函数
// 返回 nil 表示“置空/不设置”，错误同样按置空处理（尽力而为策略）
type Coercion func(v interface{}) (interface{}, error)

// FieldRule 一条映射规则：平台字段 -> 本地字段 + 转换
type FieldRule struct {
	VendorKey  string
	LocalField string
	Coerce     Coercion
}

// Table 一个实体的映射表
type Table struct {
	Entity string
	Rules  []FieldRule
}

// ==================== 启动期校验 ====================

// Validate 启动时校验映射表完整性
// target 传目标模型指针，逐条检查 LocalField 在结构体上真实存在
func (t Table) Validate(target interface{}) error {
	rt := reflect.TypeOf(target)
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return fmt.Errorf("映射表 %s: 目标不是结构体", t.Entity)
	}

	var missing []string
	for _, rule := range t.Rules {
		if _, ok := rt.FieldByName(rule.LocalField); !ok {
			missing = append(missing, rule.LocalField)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("映射表 %s: 本地字段不存在 %v", t.Entity, missing)
	}
	return nil
}

// ==================== 应用映射 ====================

// Apply 把平台 JSON（已解析为 map）按规则写入目标结构体
// 未声明的平台字段丢弃；转换失败的字段保持零值，不中断整条记录
func (t Table) Apply(vendor map[string]interface{}, target interface{}) {
	rv := reflect.ValueOf(target)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}

	for _, rule := range t.Rules {
		raw, ok := vendor[rule.VendorKey]
		if !ok || raw == nil {
			continue
		}

		coerced := raw
		if rule.Coerce != nil {
			v, err := rule.Coerce(raw)
			if err != nil || v == nil {
				// 坏值置空而不是中止，保证同步连续性
				continue
			}
			coerced = v
		}

		setField(rv.FieldByName(rule.LocalField), coerced)
	}
}

// setField 带类型适配的赋值
func setField(field reflect.Value, v interface{}) {
	if !field.IsValid() || !field.CanSet() {
		return
	}

	val := reflect.ValueOf(v)

	// 指针目标（*time.Time 等）：值类型匹配时取地址赋入
	if field.Kind() == reflect.Ptr {
		if val.Kind() == reflect.Ptr {
			if val.Type().AssignableTo(field.Type()) {
				field.Set(val)
			}
			return
		}
		if val.Type() == field.Type().Elem() {
			p := reflect.New(field.Type().Elem())
			p.Elem().Set(val)
			field.Set(p)
		}
		return
	}

	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
	}
}
