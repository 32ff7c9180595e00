package runtime

import (
	"errors"

	"github.com/tangzhangming/starbytes/internal/diag"
)

// Unit 一个模块的字节码和定位信息。File 和 Regions 可以为空，
// 为空时运行时错误不带源码位置。
type Unit struct {
	Code    []byte
	File    string
	Regions map[int]diag.Region // 语句记录的偏移 -> 源码区间
}

// locate 给还没有位置的运行时错误补上 at 处语句的区间。
// 最内层的语句先返回，外层不会覆盖它。
func (u *Unit) locate(err error, at int) error {
	var f *Fault
	if !errors.As(err, &f) || f.Region != nil {
		return err
	}
	region, ok := u.Regions[at]
	if !ok {
		return err
	}
	f.Region = &region
	f.File = u.File
	return err
}
