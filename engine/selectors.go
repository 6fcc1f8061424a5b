package engine

import (
	"fmt"
	"strings"
)

// DiscoverySelector describes one place for engines to look for tests during
// discovery: a package, a class, a single method, a previously discovered
// unique id, or a classpath root. Selectors carry no resolution logic of
// their own; what a selector means is entirely up to each engine.
//
// The set of selector kinds is closed. Engines switch on the concrete type.
type DiscoverySelector interface {
	fmt.Stringer

	// validate reports a precondition violation for malformed selector
	// content. The request builder surfaces it to the caller.
	validate() error
}

// PackageSelector selects all tests found in one package.
type PackageSelector struct {
	PackageName string
}

// ClassSelector selects all tests found in one class or suite.
type ClassSelector struct {
	ClassName string
}

// MethodSelector selects a single test method within a class or suite.
type MethodSelector struct {
	ClassName  string
	MethodName string
}

// UniqueIDSelector selects the node with the given unique id along with its
// whole subtree. It is typically built from an id taken out of an earlier
// test plan.
type UniqueIDSelector struct {
	ID UniqueID
}

// ClasspathRootSelector selects all tests reachable under one root directory
// or archive of compiled test code.
type ClasspathRootSelector struct {
	Root string
}

// SelectPackage creates a selector for the given package name.
func SelectPackage(packageName string) PackageSelector {
	return PackageSelector{PackageName: packageName}
}

// SelectClass creates a selector for the given class or suite name.
func SelectClass(className string) ClassSelector {
	return ClassSelector{ClassName: className}
}

// SelectMethod creates a selector for a single method of a class or suite.
func SelectMethod(className, methodName string) MethodSelector {
	return MethodSelector{ClassName: className, MethodName: methodName}
}

// SelectUniqueID creates a selector for a previously discovered node.
func SelectUniqueID(id UniqueID) UniqueIDSelector {
	return UniqueIDSelector{ID: id}
}

// SelectClasspathRoot creates a selector for one root of compiled test code.
func SelectClasspathRoot(root string) ClasspathRootSelector {
	return ClasspathRootSelector{Root: root}
}

func (s PackageSelector) String() string {
	return fmt.Sprintf("PackageSelector(%s)", s.PackageName)
}

func (s PackageSelector) validate() error {
	return notBlank(s.PackageName, "package name")
}

func (s ClassSelector) String() string {
	return fmt.Sprintf("ClassSelector(%s)", s.ClassName)
}

func (s ClassSelector) validate() error {
	return notBlank(s.ClassName, "class name")
}

func (s MethodSelector) String() string {
	return fmt.Sprintf("MethodSelector(%s#%s)", s.ClassName, s.MethodName)
}

func (s MethodSelector) validate() error {
	if err := notBlank(s.ClassName, "class name"); err != nil {
		return err
	}
	return notBlank(s.MethodName, "method name")
}

func (s UniqueIDSelector) String() string {
	return fmt.Sprintf("UniqueIDSelector(%s)", s.ID)
}

func (s UniqueIDSelector) validate() error {
	if len(s.ID) == 0 {
		return fmt.Errorf("unique id must not be empty")
	}
	return nil
}

func (s ClasspathRootSelector) String() string {
	return fmt.Sprintf("ClasspathRootSelector(%s)", s.Root)
}

func (s ClasspathRootSelector) validate() error {
	return notBlank(s.Root, "classpath root")
}

// ValidateSelector checks the content of a selector, returning an error that
// describes the malformed field if there is one.
func ValidateSelector(s DiscoverySelector) error {
	if s == nil {
		return fmt.Errorf("selector must not be nil")
	}
	return s.validate()
}

func notBlank(value, what string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s must not be blank", what)
	}
	return nil
}
