package query

import (
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/radiocontrol/internal/platform/errors"
	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// StationDeclarations returns the field declarations for station filtering.
// The literals true and false are declared as boolean identifiers, and
// juxtaposed terms (implicit AND) are accepted.
func StationDeclarations() (*filtering.Declarations, error) {
	return filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareFunction(
			filtering.FunctionFuzzyAnd,
			filtering.NewFunctionOverload(filtering.FunctionFuzzyAnd+"_bool", filtering.TypeBool, filtering.TypeBool, filtering.TypeBool),
		),
		filtering.DeclareIdent("departamento", filtering.TypeString),
		filtering.DeclareIdent("localidad", filtering.TypeString),
		filtering.DeclareIdent("contacto", filtering.TypeString),
		filtering.DeclareIdent("tipo_software", filtering.TypeString),
		filtering.DeclareIdent("activo", filtering.TypeBool),
		filtering.DeclareIdent("acceso_remoto", filtering.TypeBool),
		filtering.DeclareIdent("true", filtering.TypeBool),
		filtering.DeclareIdent("false", filtering.TypeBool),
	)
}

// stationColumns maps filter field names to SQL column names.
var stationColumns = map[string]string{
	"departamento":  "departamento",
	"localidad":     "localidad",
	"contacto":      "contacto_administrador",
	"tipo_software": "remote_software",
	"activo":        "activo",
	"acceso_remoto": "remote_available",
}

var boolLiterals = map[string]bool{"true": true, "false": false}

// ParseStationFilter parses an AIP-160 filter expression such as
// `departamento = "Lima" AND activo = true` into a storage condition.
// An empty expression yields an empty condition.
func ParseStationFilter(filterStr string) (storage.Condition, error) {
	if strings.TrimSpace(filterStr) == "" {
		return storage.Condition{}, nil
	}

	decls, err := StationDeclarations()
	if err != nil {
		return storage.Condition{}, fmt.Errorf("create declarations: %w", err)
	}
	filter, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return storage.Condition{}, invalidFilter(err)
	}
	cond, err := translateExpr(filter.CheckedExpr.GetExpr())
	if err != nil {
		return storage.Condition{}, invalidFilter(err)
	}
	return cond, nil
}

func invalidFilter(cause error) error {
	return apperrors.WrapWithMetadata(
		apperrors.CodeFilterInvalid,
		"invalid station filter",
		map[string]string{"reason": cause.Error()},
		cause,
	)
}

func translateExpr(e *expr.Expr) (storage.Condition, error) {
	if e == nil {
		return storage.Condition{}, nil
	}
	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return translateCall(kind.CallExpr)
	case *expr.Expr_IdentExpr:
		// A bare boolean field such as `activo`.
		return translateComparison([]*expr.Expr{e, {
			ExprKind: &expr.Expr_IdentExpr{IdentExpr: &expr.Expr_Ident{Name: "true"}},
		}}, "=")
	default:
		return storage.Condition{}, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

func translateCall(call *expr.Expr_Call) (storage.Condition, error) {
	switch call.Function {
	case "_&&_", filtering.FunctionAnd, filtering.FunctionFuzzyAnd:
		return translateJunction(call.Args, "AND")
	case "_||_", filtering.FunctionOr:
		return translateJunction(call.Args, "OR")
	case "!_", filtering.FunctionNot:
		return translateNot(call.Args)
	case "_==_", filtering.FunctionEquals:
		return translateComparison(call.Args, "=")
	case "_!=_", filtering.FunctionNotEquals:
		return translateComparison(call.Args, "!=")
	default:
		return storage.Condition{}, fmt.Errorf("unsupported function: %s", call.Function)
	}
}

func translateJunction(args []*expr.Expr, op string) (storage.Condition, error) {
	if len(args) < 2 {
		return storage.Condition{}, fmt.Errorf("%s requires at least 2 arguments", op)
	}
	clauses := make([]string, 0, len(args))
	var params []any
	for _, arg := range args {
		cond, err := translateExpr(arg)
		if err != nil {
			return storage.Condition{}, err
		}
		clauses = append(clauses, cond.Clause)
		params = append(params, cond.Params...)
	}
	return storage.Condition{
		Clause: "(" + strings.Join(clauses, " "+op+" ") + ")",
		Params: params,
	}, nil
}

func translateNot(args []*expr.Expr) (storage.Condition, error) {
	if len(args) != 1 {
		return storage.Condition{}, fmt.Errorf("NOT requires 1 argument")
	}
	inner, err := translateExpr(args[0])
	if err != nil {
		return storage.Condition{}, err
	}
	return storage.Condition{Clause: "NOT " + inner.Clause, Params: inner.Params}, nil
}

func translateComparison(args []*expr.Expr, op string) (storage.Condition, error) {
	if len(args) != 2 {
		return storage.Condition{}, fmt.Errorf("comparison requires 2 arguments")
	}
	field, err := extractFieldName(args[0])
	if err != nil {
		return storage.Condition{}, err
	}
	column, ok := stationColumns[field]
	if !ok {
		return storage.Condition{}, fmt.Errorf("unknown field: %s", field)
	}
	value, err := extractValue(args[1])
	if err != nil {
		return storage.Condition{}, err
	}
	if field == "tipo_software" {
		kind, err := storage.ParseSoftwareKind(fmt.Sprint(value))
		if err != nil {
			return storage.Condition{}, err
		}
		value = string(kind)
	}
	return storage.Condition{
		Clause: fmt.Sprintf("%s %s ?", column, op),
		Params: []any{value},
	}, nil
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}
	switch kind := e.ExprKind.(type) {
	case *expr.Expr_IdentExpr:
		if _, literal := boolLiterals[kind.IdentExpr.Name]; literal {
			return "", fmt.Errorf("expected field, got literal %s", kind.IdentExpr.Name)
		}
		return kind.IdentExpr.Name, nil
	default:
		return "", fmt.Errorf("expected identifier, got %T", kind)
	}
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}
	switch kind := e.ExprKind.(type) {
	case *expr.Expr_ConstExpr:
		switch value := kind.ConstExpr.GetConstantKind().(type) {
		case *expr.Constant_StringValue:
			return value.StringValue, nil
		case *expr.Constant_BoolValue:
			return value.BoolValue, nil
		default:
			return nil, fmt.Errorf("unsupported constant type: %T", value)
		}
	case *expr.Expr_IdentExpr:
		value, ok := boolLiterals[kind.IdentExpr.Name]
		if !ok {
			return nil, fmt.Errorf("expected literal, got field %s", kind.IdentExpr.Name)
		}
		return value, nil
	default:
		return nil, fmt.Errorf("expected constant, got %T", kind)
	}
}
