package api

import (
	"errors"
	"insurance/internal/entity/db"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	validatorsOnce sync.Once
	validatorsErr  error
)

// RegisterValidators 向 gin 的校验引擎注册业务校验标签 client_type 与 business_status
func RegisterValidators() error {
	validatorsOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			validatorsErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		rules := map[string]func(string) bool{
			"client_type":     db.ValidClientType,
			"business_status": db.ValidBusinessStatus,
		}
		for tag, valid := range rules {
			valid := valid
			if err := engine.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
				return valid(fl.Field().String())
			}); err != nil {
				validatorsErr = err
				return
			}
		}
	})
	return validatorsErr
}
