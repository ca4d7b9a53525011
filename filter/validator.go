package filter

// InstantiableValidator 只保留可直接构造的类型
type InstantiableValidator struct {
	relations Relations
}

func Instantiable(relations Relations) *InstantiableValidator {
	return &InstantiableValidator{relations: relations}
}

func (v *InstantiableValidator) Validate(id string) bool {
	return v.relations.Instantiable(id)
}

// ExtendsValidator 只保留（传递地）嵌入了 parent 的类型，不含 parent 自身
type ExtendsValidator struct {
	relations Relations
	parent    string
}

func Extends(relations Relations, parent string) *ExtendsValidator {
	return &ExtendsValidator{relations: relations, parent: parent}
}

func (v *ExtendsValidator) Validate(id string) bool {
	return v.relations.Extends(id, v.parent)
}

func (v *ExtendsValidator) Fingerprint() string {
	return v.parent
}

// ImplementsValidator 只保留实现了接口的类型
type ImplementsValidator struct {
	relations Relations
	iface     string
}

func Implements(relations Relations, iface string) *ImplementsValidator {
	return &ImplementsValidator{relations: relations, iface: iface}
}

func (v *ImplementsValidator) Validate(id string) bool {
	return v.relations.Implements(id, v.iface)
}

func (v *ImplementsValidator) Fingerprint() string {
	return v.iface
}
